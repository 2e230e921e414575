package threadpool

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestSubmitRunsAllTasks(t *testing.T) {
	p := New(4)
	var count int64

	handles := make([]Handle, 0, 10)
	for i := 0; i < 10; i++ {
		handles = append(handles, p.Submit(func() error {
			atomic.AddInt64(&count, 1)
			return nil
		}))
	}

	errs := Wait(handles)
	for _, err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}

func TestWaitWaitsForEveryTaskEvenAfterAFailure(t *testing.T) {
	p := New(2)
	var completed int64

	handles := []Handle{
		p.Submit(func() error { return errors.New("boom") }),
		p.Submit(func() error {
			atomic.AddInt64(&completed, 1)
			return nil
		}),
		p.Submit(func() error {
			atomic.AddInt64(&completed, 1)
			return nil
		}),
	}

	errs := Wait(handles)
	if errs[0] == nil {
		t.Error("expected first task's error to be preserved")
	}
	if completed != 2 {
		t.Errorf("completed = %d, want 2 (peers must run to completion)", completed)
	}
}

func TestSizeReflectsCapacity(t *testing.T) {
	p := New(0)
	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1 (size < 1 clamps to 1)", p.Size())
	}
	p = New(8)
	if p.Size() != 8 {
		t.Errorf("Size() = %d, want 8", p.Size())
	}
}
