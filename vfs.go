package vfs

import (
	"context"
	"sync"

	"github.com/arrayvfs/vfs/internal/backend"
	"github.com/arrayvfs/vfs/internal/capability"
	"github.com/arrayvfs/vfs/internal/dispatcher"
	"github.com/arrayvfs/vfs/internal/lifecycle"
	"github.com/arrayvfs/vfs/internal/metrics"
	"github.com/arrayvfs/vfs/pkg/config"
	vfserrors "github.com/arrayvfs/vfs/pkg/errors"
	"github.com/arrayvfs/vfs/pkg/uri"
)

// Mode is the open mode a file is opened under.
type Mode = backend.Mode

const (
	ModeRead   = backend.ModeRead
	ModeWrite  = backend.ModeWrite
	ModeAppend = backend.ModeAppend
)

// Token is the opaque lock handle FileLockLock returns.
type Token = backend.Token

// VFS is the façade over every backend this build links in. The zero value
// is not usable; construct one with New and call Init before any other
// method.
type VFS struct {
	mu          sync.RWMutex
	ctrl        *lifecycle.Controller
	initialized bool
}

// New returns an uninitialized VFS. It holds no backend registry until Init
// succeeds: before then SupportsFS reports false for every backend, and
// every other operation fails with NotInitialized.
func New() *VFS {
	return &VFS{}
}

// Init connects every backend this build links in and sizes the worker
// pool per params.MaxParallelOps. If any connect step fails, Init returns
// the first failing error and the VFS remains uninitialized.
func (v *VFS) Init(ctx context.Context, params config.VfsParams) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	ctrl, err := lifecycle.Init(ctx, params)
	if err != nil {
		return err
	}
	v.ctrl = ctrl
	v.initialized = true
	return nil
}

// Shutdown releases the worker pool and every connected adapter's local
// resources. Remote adapters (HDFS, S3) are not actively disconnected; their
// connections are released when the adapter objects themselves are
// garbage-collected. After Shutdown, every operation fails with
// NotInitialized until Init is called again.
func (v *VFS) Shutdown() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return vfserrors.NotInitialized("shutdown", "")
	}
	err := v.ctrl.Shutdown()
	v.initialized = false
	v.ctrl = nil
	return err
}

// SetMetrics wires a metrics.Collector into the VFS's operation path. Must
// be called after Init. A nil collector is ignored.
func (v *VFS) SetMetrics(m metrics.Collector) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.initialized {
		v.ctrl.Dispatcher().SetMetrics(m)
	}
}

// Snapshot returns the active configuration and which backends this build
// supports.
func (v *VFS) Snapshot() (lifecycle.Snapshot, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.initialized {
		return lifecycle.Snapshot{}, vfserrors.NotInitialized("snapshot", "")
	}
	return v.ctrl.Snapshot(), nil
}

// dispatcher returns the active Dispatcher, or NotInitialized if Init
// hasn't succeeded (or Shutdown has already run).
func (v *VFS) dispatcher(op string) (*dispatcher.Dispatcher, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.initialized {
		return nil, vfserrors.NotInitialized(op, "")
	}
	return v.ctrl.Dispatcher(), nil
}

// AbsPath canonicalizes path into a URI string: a recognized scheme is
// returned unchanged, otherwise path is treated as a host-native local path
// and turned into a file:// URI. Pure; no I/O.
func (v *VFS) AbsPath(path string) string {
	return uri.AbsPath(path)
}

// SupportsFS reports whether backend b is compiled into this build.
func (v *VFS) SupportsFS(b capability.Backend) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.initialized {
		return false
	}
	return v.ctrl.Dispatcher().SupportsFS(b)
}

func (v *VFS) CreateDir(ctx context.Context, u string) error {
	d, err := v.dispatcher("create_dir")
	if err != nil {
		return err
	}
	return d.CreateDir(ctx, uri.Parse(u))
}

func (v *VFS) Touch(ctx context.Context, u string) error {
	d, err := v.dispatcher("touch")
	if err != nil {
		return err
	}
	return d.Touch(ctx, uri.Parse(u))
}

func (v *VFS) RemoveDir(ctx context.Context, u string) error {
	d, err := v.dispatcher("remove_dir")
	if err != nil {
		return err
	}
	return d.RemoveDir(ctx, uri.Parse(u))
}

func (v *VFS) RemoveFile(ctx context.Context, u string) error {
	d, err := v.dispatcher("remove_file")
	if err != nil {
		return err
	}
	return d.RemoveFile(ctx, uri.Parse(u))
}

// Ls returns the immediate children of parent as URI strings, byte-wise
// ascending.
func (v *VFS) Ls(ctx context.Context, parent string) ([]string, error) {
	d, err := v.dispatcher("ls")
	if err != nil {
		return nil, err
	}
	children, err := d.Ls(ctx, uri.Parse(parent))
	if err != nil {
		return nil, err
	}
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = c.String()
	}
	return out, nil
}

func (v *VFS) FileSize(ctx context.Context, u string) (uint64, error) {
	d, err := v.dispatcher("file_size")
	if err != nil {
		return 0, err
	}
	return d.FileSize(ctx, uri.Parse(u))
}

func (v *VFS) IsDir(ctx context.Context, u string) (bool, error) {
	d, err := v.dispatcher("is_dir")
	if err != nil {
		return false, err
	}
	return d.IsDir(ctx, uri.Parse(u))
}

func (v *VFS) IsFile(ctx context.Context, u string) (bool, error) {
	d, err := v.dispatcher("is_file")
	if err != nil {
		return false, err
	}
	return d.IsFile(ctx, uri.Parse(u))
}

func (v *VFS) MoveFile(ctx context.Context, old, newPath string) error {
	d, err := v.dispatcher("move_file")
	if err != nil {
		return err
	}
	return d.MoveFile(ctx, uri.Parse(old), uri.Parse(newPath))
}

func (v *VFS) MoveDir(ctx context.Context, old, newPath string) error {
	d, err := v.dispatcher("move_dir")
	if err != nil {
		return err
	}
	return d.MoveDir(ctx, uri.Parse(old), uri.Parse(newPath))
}

func (v *VFS) Open(ctx context.Context, u string, mode Mode) error {
	d, err := v.dispatcher("open_file")
	if err != nil {
		return err
	}
	return d.Open(ctx, uri.Parse(u), mode)
}

func (v *VFS) Close(ctx context.Context, u string) error {
	d, err := v.dispatcher("close_file")
	if err != nil {
		return err
	}
	return d.Close(ctx, uri.Parse(u))
}

// Read fills buf[:nbytes] with data read from u starting at offset, fanning
// out across the worker pool when the read is large enough to split.
func (v *VFS) Read(ctx context.Context, u string, offset int64, buf []byte, nbytes int64) error {
	d, err := v.dispatcher("read")
	if err != nil {
		return err
	}
	return d.Read(ctx, uri.Parse(u), offset, buf, nbytes)
}

func (v *VFS) Write(ctx context.Context, u string, buf []byte, n int) (int, error) {
	d, err := v.dispatcher("write")
	if err != nil {
		return 0, err
	}
	return d.Write(ctx, uri.Parse(u), buf, n)
}

func (v *VFS) Sync(ctx context.Context, u string) error {
	d, err := v.dispatcher("sync")
	if err != nil {
		return err
	}
	return d.Sync(ctx, uri.Parse(u))
}

func (v *VFS) FileLockLock(ctx context.Context, u string, shared bool) (Token, error) {
	d, err := v.dispatcher("filelock_lock")
	if err != nil {
		return nil, err
	}
	return d.FileLockLock(ctx, uri.Parse(u), shared)
}

func (v *VFS) FileLockUnlock(ctx context.Context, u string, token Token) error {
	d, err := v.dispatcher("filelock_unlock")
	if err != nil {
		return err
	}
	return d.FileLockUnlock(ctx, uri.Parse(u), token)
}

func (v *VFS) CreateBucket(ctx context.Context, u string) error {
	d, err := v.dispatcher("create_bucket")
	if err != nil {
		return err
	}
	return d.CreateBucket(ctx, uri.Parse(u))
}

func (v *VFS) RemoveBucket(ctx context.Context, u string) error {
	d, err := v.dispatcher("remove_bucket")
	if err != nil {
		return err
	}
	return d.RemoveBucket(ctx, uri.Parse(u))
}

func (v *VFS) EmptyBucket(ctx context.Context, u string) error {
	d, err := v.dispatcher("empty_bucket")
	if err != nil {
		return err
	}
	return d.EmptyBucket(ctx, uri.Parse(u))
}

func (v *VFS) IsEmptyBucket(ctx context.Context, u string) (bool, error) {
	d, err := v.dispatcher("is_empty_bucket")
	if err != nil {
		return false, err
	}
	return d.IsEmptyBucket(ctx, uri.Parse(u))
}

func (v *VFS) IsBucket(ctx context.Context, u string) (bool, error) {
	d, err := v.dispatcher("is_bucket")
	if err != nil {
		return false, err
	}
	return d.IsBucket(ctx, uri.Parse(u))
}
