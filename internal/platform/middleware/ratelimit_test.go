package middleware

import (
	"testing"
	"time"
)

func TestTokenBucket_Refill(t *testing.T) {
	b := newTokenBucket(100, 1)
	if !b.allow() {
		t.Fatal("first token should be available")
	}
	if b.allow() {
		t.Fatal("bucket should be empty")
	}
	time.Sleep(20 * time.Millisecond)
	if !b.allow() {
		t.Error("bucket should have refilled")
	}
}

func TestTokenBucket_CapsAtBurst(t *testing.T) {
	b := newTokenBucket(1000, 2)
	time.Sleep(10 * time.Millisecond)
	allowed := 0
	for i := 0; i < 10; i++ {
		if b.allow() {
			allowed++
		}
	}
	if allowed > 2 {
		t.Errorf("expected at most 2 immediate tokens, got %d", allowed)
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond <= 0 || cfg.BurstSize <= 0 {
		t.Error("defaults must be positive")
	}
}
