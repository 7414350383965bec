// Package statemachine factors the control-loop shape shared by the miner
// and the transaction generator: a {Paused, Run(interval), ShutDown} state
// driven by a control channel carrying {Start(interval), Update, Exit}. The
// control channel is buffered with a fixed capacity (controlBufferSize); a
// send blocks once that buffer is full.
package statemachine

// State is the operating state of a controlled worker loop.
type State int

const (
	// Paused blocks indefinitely on the control channel.
	Paused State = iota
	// Running performs one unit of work per iteration, then sleeps
	// Interval before checking the control channel again.
	Running
	// ShutDown causes the loop to return on its next check.
	ShutDown
)

// Signal is a message sent over a worker's control channel.
type Signal struct {
	Kind SignalKind
	// IntervalMicros is only meaningful when Kind is SignalStart: the
	// sleep duration, in microseconds, between loop iterations while
	// running. Zero means run flat-out with no sleep.
	IntervalMicros uint64
}

// SignalKind identifies the variant of a Signal.
type SignalKind int

const (
	// SignalStart transitions the worker to Running with the given
	// interval.
	SignalStart SignalKind = iota
	// SignalUpdate asks a running worker to recompute whatever it is
	// working on (e.g. a new tip or mempool contents), without changing
	// its operating state.
	SignalUpdate
	// SignalExit transitions the worker to ShutDown.
	SignalExit
)

// controlBufferSize is the capacity of a worker's control channel. The
// buffer keeps senders from blocking against a worker that is itself
// blocked sending downstream (e.g. the installer signaling Update to a
// miner that is mid-send on the solved-block channel): a worker drains one
// signal per iteration, so the buffer never fills in practice.
const controlBufferSize = 128

// ControlHandle is held by callers (e.g. an admin surface) to drive a
// worker's control loop.
type ControlHandle struct {
	control chan Signal
}

// NewControlHandle returns a handle over a control channel, and the channel
// itself for the worker loop to read from.
func NewControlHandle() (*ControlHandle, <-chan Signal) {
	control := make(chan Signal, controlBufferSize)
	return &ControlHandle{control: control}, control
}

// Start signals the worker to begin running with the given interval
// (microseconds between iterations; 0 means no sleep).
func (h *ControlHandle) Start(intervalMicros uint64) {
	h.control <- Signal{Kind: SignalStart, IntervalMicros: intervalMicros}
}

// Update signals a running worker to recompute its in-progress work.
func (h *ControlHandle) Update() {
	h.control <- Signal{Kind: SignalUpdate}
}

// Exit signals the worker to shut down.
func (h *ControlHandle) Exit() {
	h.control <- Signal{Kind: SignalExit}
}

// Loop drives state through Paused/Running/ShutDown, calling step once per
// Running iteration and sleep between iterations with the current
// interval. onUpdate is called whenever a SignalUpdate arrives while
// Running, to resync in-progress work against shared state that changed
// out from under the worker (e.g. a new tip installed by another thread);
// onUpdate may be nil. control is read non-blockingly while Running (so
// step keeps making progress) and blockingly while Paused. Loop returns
// once a SignalExit is received.
func Loop(control <-chan Signal, step func(), sleep func(intervalMicros uint64), onUpdate func()) {
	state := Paused
	var interval uint64

	for {
		switch state {
		case ShutDown:
			return

		case Paused:
			signal := <-control
			switch signal.Kind {
			case SignalExit:
				state = ShutDown
			case SignalStart:
				state = Running
				interval = signal.IntervalMicros
			case SignalUpdate:
				// nothing to recompute while paused
			}
			continue

		case Running:
			select {
			case signal := <-control:
				switch signal.Kind {
				case SignalExit:
					state = ShutDown
					continue
				case SignalStart:
					interval = signal.IntervalMicros
				case SignalUpdate:
					if onUpdate != nil {
						onUpdate()
					}
				}
			default:
			}

			step()
			if interval != 0 {
				sleep(interval)
			}
		}
	}
}
