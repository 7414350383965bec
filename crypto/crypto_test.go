package crypto

import "testing"

func TestKeyPairFromSeedDeterministic(t *testing.T) {
	var seed [SeedSize]byte
	seed[0] = 7

	kp1 := KeyPairFromSeed(seed)
	kp2 := KeyPairFromSeed(seed)

	if kp1.Address != kp2.Address {
		t.Fatalf("expected identical addresses from identical seeds, got %s and %s",
			kp1.Address, kp2.Address)
	}
}

func TestSignAndVerify(t *testing.T) {
	var seed [SeedSize]byte
	seed[0] = 1
	kp := KeyPairFromSeed(seed)

	msg := []byte("transfer 10 coins")
	sig := kp.Sign(msg)

	if !VerifySignature(kp.PublicKey, msg, sig) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	var seed [SeedSize]byte
	seed[0] = 2
	kp := KeyPairFromSeed(seed)

	msg := []byte("transfer 10 coins")
	sig := kp.Sign(msg)

	tampered := append([]byte{}, msg...)
	tampered[0] ^= 0xff

	if VerifySignature(kp.PublicKey, tampered, sig) {
		t.Fatal("expected signature verification to fail for tampered message")
	}
}

func TestH256FromHexRoundTrips(t *testing.T) {
	var h H256
	h[0], h[31] = 0xab, 0xcd

	decoded, err := H256FromHex(h.String())
	if err != nil {
		t.Fatalf("H256FromHex: %v", err)
	}
	if decoded != h {
		t.Fatalf("expected round-trip to recover %s, got %s", h, decoded)
	}
}

func TestH256FromHexRejectsWrongLength(t *testing.T) {
	if _, err := H256FromHex("ab"); err == nil {
		t.Fatal("expected an error for a too-short hex string")
	}
}

func TestHashLessOrEqual(t *testing.T) {
	low := H256{0x00, 0x01}
	high := H256{0xff}

	if !low.LessOrEqual(high) {
		t.Fatal("expected low <= high")
	}
	if high.LessOrEqual(low) {
		t.Fatal("expected high > low")
	}
	if !low.LessOrEqual(low) {
		t.Fatal("expected a hash to be <= itself")
	}
}
