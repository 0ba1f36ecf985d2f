package handlers

import (
	"testing"
	"time"

	"github.com/camden-git/librarycatalog/logger"
)

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter(5, 5, logger.Nop())
	now := time.Now()
	rl.allow("10.0.0.1", now.Add(-10*time.Minute))
	rl.allow("10.0.0.2", now)

	rl.Sweep(now)

	if _, ok := rl.clients["10.0.0.1"]; ok {
		t.Error("expected stale client to be swept")
	}
	if _, ok := rl.clients["10.0.0.2"]; !ok {
		t.Error("expected recent client to be kept")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 2, logger.Nop())
	now := time.Now()
	if !rl.allow("a", now) || !rl.allow("a", now) {
		t.Fatal("burst of 2 must be allowed")
	}
	if rl.allow("a", now) {
		t.Error("third request in the same instant must be limited")
	}
	if !rl.allow("b", now) {
		t.Error("another client has its own bucket")
	}
}
