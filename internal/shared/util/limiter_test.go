package util

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(1, 2)

	if !l.Allow(1) {
		t.Error("first event within burst must be allowed")
	}
	if !l.Allow(1) {
		t.Error("second event within burst must be allowed")
	}
	if l.Allow(1) {
		t.Error("third immediate event must be throttled")
	}
}

func TestLimiterWaitRespectsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow(1) // drain the burst

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, 1); err == nil {
		t.Error("expected Wait to fail once the context deadline passes")
	}
}
