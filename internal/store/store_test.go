package store

import (
	"testing"
	"time"
)

func TestClock_StrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(5000)
	clock := NewClock(func() time.Time { return fixed })

	first := clock.Now()
	second := clock.Now()
	third := clock.Now()

	if first != 5000 {
		t.Errorf("expected 5000, got %d", first)
	}
	if second != 5001 || third != 5002 {
		t.Errorf("expected 5001, 5002, got %d, %d", second, third)
	}
}

func TestClock_FollowsWallTime(t *testing.T) {
	current := time.UnixMilli(1000)
	clock := NewClock(func() time.Time { return current })

	clock.Now()
	current = time.UnixMilli(9000)
	if got := clock.Now(); got != 9000 {
		t.Errorf("expected 9000, got %d", got)
	}
}

func TestCheckUser(t *testing.T) {
	if err := CheckUser(""); err != ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if err := CheckUser("u1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
