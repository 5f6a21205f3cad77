package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	l := NewLimiter(1, 3)

	allowed := 0
	for i := 0; i < 5; i++ {
		if l.Allow("kgtk.isi.edu") {
			allowed++
		}
	}
	if allowed != 3 {
		t.Errorf("expected burst of 3 allowed, got %d", allowed)
	}
}

func TestLimiter_HostsAreIndependent(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("host-a") {
		t.Error("expected first request to host-a allowed")
	}
	if !l.Allow("host-b") {
		t.Error("expected first request to host-b allowed")
	}
	if l.Allow("host-a") {
		t.Error("expected second request to host-a denied")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetHostRate("fast-host", 100, 10)

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow("fast-host") {
			allowed++
		}
	}
	if allowed != 10 {
		t.Errorf("expected 10 allowed on overridden host, got %d", allowed)
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow("slow-host") // consume the burst

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "slow-host"); err == nil {
		t.Error("expected context deadline error from Wait")
	}
}

func TestLimiter_DefaultBurst(t *testing.T) {
	l := NewLimiter(1, 0)
	if l.defaultBurst != 5 {
		t.Errorf("expected default burst 5, got %d", l.defaultBurst)
	}
}
