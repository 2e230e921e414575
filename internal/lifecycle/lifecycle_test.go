package lifecycle

import (
	"context"
	"testing"

	"github.com/arrayvfs/vfs/pkg/config"
)

func TestInitWithUnconfiguredRemotesOnlyWiresLocal(t *testing.T) {
	params := config.Default()
	ctrl, err := Init(context.Background(), params)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if ctrl.Dispatcher() == nil {
		t.Fatal("expected a non-nil Dispatcher")
	}
	if err := ctrl.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestInitRejectsInvalidParams(t *testing.T) {
	params := config.Default()
	params.MaxParallelOps = 0
	if _, err := Init(context.Background(), params); err == nil {
		t.Fatal("expected an error for max_parallel_ops = 0")
	}
}

func TestSnapshotReportsConfiguredBackends(t *testing.T) {
	params := config.Default()
	ctrl, err := Init(context.Background(), params)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Params.MaxParallelOps != params.MaxParallelOps {
		t.Errorf("Snapshot().Params.MaxParallelOps = %d, want %d", snap.Params.MaxParallelOps, params.MaxParallelOps)
	}
	if len(snap.Backends) == 0 {
		t.Error("expected at least one backend reported")
	}
}
