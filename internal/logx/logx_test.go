package logx

import (
	"context"
	"testing"
)

func TestCtxReturnsLogger(t *testing.T) {
	if Ctx(context.Background()) == nil {
		t.Fatalf("expected a logger from a bare context")
	}
}

func TestWithCycleHandlesEmptyIdentity(t *testing.T) {
	log := Ctx(context.Background())
	if WithCycle(log, "", "") == nil {
		t.Fatalf("expected a logger")
	}
	if WithCycle(log, "Team", "Alice") == nil {
		t.Fatalf("expected an annotated logger")
	}
}
