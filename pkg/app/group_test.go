package app

import "testing"

func TestGroupJoinRequiresRules(t *testing.T) {
	g := NewGroup()
	if err := g.RequestJoin(); err != ErrRulesNotAccepted {
		t.Fatalf("expected ErrRulesNotAccepted, got %v", err)
	}
	g.AgreeRules(true)
	if err := g.RequestJoin(); err != nil {
		t.Fatalf("RequestJoin: %v", err)
	}
	if got := g.PaymentSucceeded(); got != DefaultJoined+1 {
		t.Fatalf("expected %d members, got %d", DefaultJoined+1, got)
	}
	if g.Joined() != DefaultJoined+1 {
		t.Fatalf("joined count not kept")
	}
}
