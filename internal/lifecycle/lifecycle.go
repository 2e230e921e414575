// Package lifecycle owns Init/Shutdown for a VFS instance: it sizes the
// worker pool, connects whichever remote backends were compiled in, builds
// the local adapter, and assembles a Dispatcher from the result. If any
// connect step fails, Init returns the first failing error and leaves the
// caller with nothing usable.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/arrayvfs/vfs/internal/backend/localfs"
	"github.com/arrayvfs/vfs/internal/capability"
	"github.com/arrayvfs/vfs/internal/circuit"
	"github.com/arrayvfs/vfs/internal/dispatcher"
	"github.com/arrayvfs/vfs/pkg/config"
	vfserrors "github.com/arrayvfs/vfs/pkg/errors"
	"github.com/arrayvfs/vfs/pkg/retry"
	"github.com/arrayvfs/vfs/pkg/threadpool"
)

// Controller holds everything Init assembled, so Shutdown and Snapshot can
// act on it later.
type Controller struct {
	params config.VfsParams
	caps   *capability.Registry
	pool   *threadpool.Pool
	disp   *dispatcher.Dispatcher
}

// Snapshot is a point-in-time view of what the running VFS can do, useful
// for a caller to log or expose diagnostics.
type Snapshot struct {
	Params   config.VfsParams
	Backends []capability.Backend
}

// Init validates params, constructs the worker pool, connects every backend
// this build links in, and assembles a Dispatcher. hdfs/s3 connect failures
// fail Init outright — there is no degraded "connect later" mode.
func Init(ctx context.Context, params config.VfsParams) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("lifecycle: invalid params: %w", err)
	}

	caps := capability.NewRegistry()
	pool := threadpool.New(params.MaxParallelOps)

	hdfsAdapter, err := connectHDFS(ctx, params.HDFS)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: connecting hdfs: %w", err)
	}
	s3Adapter, err := connectS3(ctx, params.S3)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: connecting s3: %w", err)
	}

	local := localfs.New()

	disp := dispatcher.New(caps, pool, local, hdfsAdapter, s3Adapter, params.MinParallelSize)
	return &Controller{params: params, caps: caps, pool: pool, disp: disp}, nil
}

// Dispatcher returns the assembled Dispatcher for the PublicAPI to route
// operations through.
func (c *Controller) Dispatcher() *dispatcher.Dispatcher {
	return c.disp
}

// Snapshot returns the active configuration plus which backends this build
// supports.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Params: c.params, Backends: c.caps.Backends()}
}

// Shutdown releases adapter state and the pool. Remote adapter disconnects
// are suppressed by design: adapter resources are released when their
// owning objects are destroyed, not actively torn down here.
func (c *Controller) Shutdown() error {
	return c.disp.Shutdown()
}

// connectRemote wraps a backend connect call in a fresh circuit breaker so a
// single flapping endpoint trips after a few failures rather than retrying
// forever, and in a retryer so a transient failure doesn't fail Init outright.
func connectRemote(connect func() error) error {
	breaker := circuit.New(circuit.DefaultConfig())
	retrier := retry.New(retry.DefaultConfig())
	return retrier.Do(func() error {
		return breaker.Execute(func() error {
			if err := connect(); err != nil {
				return vfserrors.Wrap("connect", "", err)
			}
			return nil
		})
	})
}
