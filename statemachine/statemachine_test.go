package statemachine

import (
	"testing"
	"time"
)

func TestLoopStaysPausedUntilStart(t *testing.T) {
	handle, control := NewControlHandle()
	steps := make(chan struct{}, 10)

	done := make(chan struct{})
	go func() {
		Loop(control, func() { steps <- struct{}{} }, func(uint64) {}, nil)
		close(done)
	}()

	select {
	case <-steps:
		t.Fatal("expected no steps before Start")
	case <-time.After(20 * time.Millisecond):
	}

	handle.Exit()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected loop to exit")
	}
}

func TestLoopRunsStepsAfterStart(t *testing.T) {
	handle, control := NewControlHandle()
	steps := make(chan struct{}, 10)

	// The step fake must not block once steps is full: Loop only checks
	// control between steps, so a blocked step would hide the Exit below.
	done := make(chan struct{})
	go func() {
		Loop(control, func() {
			select {
			case steps <- struct{}{}:
			default:
			}
		}, func(uint64) {}, nil)
		close(done)
	}()

	handle.Start(0)

	select {
	case <-steps:
	case <-time.After(time.Second):
		t.Fatal("expected a step after Start")
	}

	handle.Exit()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected loop to exit")
	}
}

func TestLoopExitsFromRunningState(t *testing.T) {
	handle, control := NewControlHandle()

	done := make(chan struct{})
	go func() {
		Loop(control, func() {}, func(uint64) {}, nil)
		close(done)
	}()

	handle.Start(0)
	handle.Exit()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected loop to exit from running state")
	}
}

func TestLoopSleepsWithConfiguredInterval(t *testing.T) {
	handle, control := NewControlHandle()
	var observedIntervals []uint64
	sleeps := make(chan uint64, 10)

	done := make(chan struct{})
	go func() {
		Loop(control, func() {}, func(interval uint64) {
			select {
			case sleeps <- interval:
			default:
			}
		}, nil)
		close(done)
	}()

	handle.Start(500)
	select {
	case interval := <-sleeps:
		observedIntervals = append(observedIntervals, interval)
	case <-time.After(time.Second):
		t.Fatal("expected a sleep call with the configured interval")
	}
	if observedIntervals[0] != 500 {
		t.Fatalf("expected interval 500, got %d", observedIntervals[0])
	}

	handle.Exit()
	<-done
}

func TestLoopCallsOnUpdateWhileRunning(t *testing.T) {
	handle, control := NewControlHandle()
	updates := make(chan struct{}, 10)

	done := make(chan struct{})
	go func() {
		Loop(control, func() {}, func(uint64) {}, func() { updates <- struct{}{} })
		close(done)
	}()

	handle.Start(0)
	handle.Update()

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("expected onUpdate to be called while running")
	}

	handle.Exit()
	<-done
}
