package sequence

import "testing"

func TestNextOutboundStepsByTwo(t *testing.T) {
	tr := NewTracker()
	for i, want := range []uint32{0, 2, 4} {
		if got := tr.NextOutbound(); got != want {
			t.Fatalf("call %d: got %d, want %d", i, got, want)
		}
	}
}

func TestAcceptInboundLockstep(t *testing.T) {
	tr := NewTracker()
	if !tr.AcceptInbound(1) {
		t.Fatal("expected nonce 1 to be accepted")
	}
	if !tr.AcceptInbound(3) {
		t.Fatal("expected nonce 3 to be accepted")
	}
	if tr.Expected() != 5 {
		t.Fatalf("expected next server nonce 5, got %d", tr.Expected())
	}
}

func TestAcceptInboundMismatchLeavesStateUnchanged(t *testing.T) {
	tr := NewTracker()
	if tr.AcceptInbound(5) {
		t.Fatal("nonce 5 must be rejected while expecting 1")
	}
	if tr.Expected() != 1 {
		t.Fatalf("counter moved on rejection: expecting %d", tr.Expected())
	}
	if !tr.AcceptInbound(1) {
		t.Fatal("nonce 1 must still be accepted after a rejection")
	}
}

func TestResetRestoresFreshState(t *testing.T) {
	tr := NewTracker()
	tr.NextOutbound()
	tr.NextOutbound()
	tr.AcceptInbound(1)

	tr.Reset()
	if got := tr.NextOutbound(); got != 0 {
		t.Fatalf("client nonce after reset: got %d, want 0", got)
	}
	if tr.Expected() != 1 {
		t.Fatalf("server nonce after reset: got %d, want 1", tr.Expected())
	}
}
