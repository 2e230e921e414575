package retry

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/arrayvfs/vfs/pkg/errors"
)

func TestRetryerSuccess(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 3
	retryer := New(config)

	attempts := 0
	err := retryer.Do(func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryerRetriesBackendError(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 3
	config.InitialDelay = 10 * time.Millisecond
	config.Jitter = false
	retryer := New(config)

	attempts := 0
	err := retryer.Do(func() error {
		attempts++
		if attempts < 3 {
			return errors.Wrap("connect", "hdfs://nn:8020", stderrors.New("connection reset"))
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryerDoesNotRetryNotFound(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 3
	config.InitialDelay = 10 * time.Millisecond
	retryer := New(config)

	attempts := 0
	err := retryer.Do(func() error {
		attempts++
		return errors.NotFound("open_file", "file:///missing")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for a non-retryable error, got %d", attempts)
	}
}

func TestRetryerExhaustsAttempts(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 3
	config.InitialDelay = 5 * time.Millisecond
	config.Jitter = false
	retryer := New(config)

	attempts := 0
	err := retryer.Do(func() error {
		attempts++
		return errors.Wrap("connect", "s3://bucket", stderrors.New("timeout"))
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}
