package circuit

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New(DefaultConfig())
	if b.State() != StateClosed {
		t.Errorf("initial state = %v, want Closed", b.State())
	}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 2, OpenTimeout: time.Hour})
	failing := errors.New("connect failed")

	_ = b.Execute(func() error { return failing })
	if b.State() != StateClosed {
		t.Fatalf("state after 1 failure = %v, want Closed", b.State())
	}
	_ = b.Execute(func() error { return failing })
	if b.State() != StateOpen {
		t.Fatalf("state after 2 failures = %v, want Open", b.State())
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	b := New(Config{FailureThreshold: 1, OpenTimeout: time.Hour})
	_ = b.Execute(func() error { return errors.New("boom") })

	calls := 0
	err := b.Execute(func() error { calls++; return nil })
	if err != ErrOpen {
		t.Errorf("err = %v, want ErrOpen", err)
	}
	if calls != 0 {
		t.Error("fn should not run while breaker is open")
	}
}

func TestBreakerHalfOpensAfterTimeout(t *testing.T) {
	b := New(Config{FailureThreshold: 1, OpenTimeout: 10 * time.Millisecond})
	_ = b.Execute(func() error { return errors.New("boom") })

	time.Sleep(20 * time.Millisecond)

	err := b.Execute(func() error { return nil })
	if err != nil {
		t.Fatalf("expected half-open probe to succeed, got %v", err)
	}
	if b.State() != StateClosed {
		t.Errorf("state after successful probe = %v, want Closed", b.State())
	}
}
