package utils

import (
	"testing"
	"time"
)

func TestHashStringToUint64(t *testing.T) {
	a := HashStringToUint64("alpha")
	b := HashStringToUint64("alpha")
	c := HashStringToUint64("beta")
	if a != b {
		t.Fatalf("hash not stable: %d vs %d", a, b)
	}
	if a == c {
		t.Fatalf("expected different hashes for different inputs")
	}
}

func TestTraceKey(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	k1 := TraceKey("entity-1", at)
	k2 := TraceKey("entity-1", at)
	if k1 != k2 {
		t.Fatalf("trace key not deterministic: %s vs %s", k1, k2)
	}
	if len(k1) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", k1)
	}
	if TraceKey("entity-2", at) == k1 {
		t.Fatalf("different entities must not collide on the same instant")
	}
	if TraceKey("entity-1", at.Add(time.Minute)) == k1 {
		t.Fatalf("different instants must not collide for the same entity")
	}
}
