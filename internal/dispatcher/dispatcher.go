// Package dispatcher inspects a URI's scheme, resolves the adapter that
// owns it, and uniformizes return shapes so every operation error always
// carries a populated Kind, Op, and URI — even when the adapter underneath
// returned a bare Go error.
package dispatcher

import (
	"context"
	"sort"
	"time"

	"github.com/arrayvfs/vfs/internal/backend"
	"github.com/arrayvfs/vfs/internal/capability"
	"github.com/arrayvfs/vfs/internal/metrics"
	"github.com/arrayvfs/vfs/internal/planner"
	vfserrors "github.com/arrayvfs/vfs/pkg/errors"
	"github.com/arrayvfs/vfs/pkg/threadpool"
	"github.com/arrayvfs/vfs/pkg/uri"
)

// Dispatcher owns the set of connected backend adapters and routes every
// operation to the right one by URI scheme alone — never by string-prefix
// matching.
type Dispatcher struct {
	caps    *capability.Registry
	pool    *threadpool.Pool
	local   backend.Adapter
	hdfs    backend.Adapter // nil if not built or not connected
	s3      backend.Adapter // nil if not built or not connected
	metrics metrics.Collector

	minParallelSize int64
}

// New constructs a Dispatcher. local is always non-nil (POSIX or Windows is
// always present); hdfs/s3 are nil when their backend was not built or the
// VFS was never connected to one.
func New(caps *capability.Registry, pool *threadpool.Pool, local, hdfs, s3 backend.Adapter, minParallelSize int64) *Dispatcher {
	return &Dispatcher{caps: caps, pool: pool, local: local, hdfs: hdfs, s3: s3, minParallelSize: minParallelSize, metrics: metrics.Noop{}}
}

// SetMetrics wires a metrics collector in place of the default no-op one.
func (d *Dispatcher) SetMetrics(m metrics.Collector) {
	if m != nil {
		d.metrics = m
	}
}

func (d *Dispatcher) record(op string, size int64, start time.Time, err error) {
	d.metrics.RecordOperation(op, time.Since(start), size, err == nil)
}

// resolve returns the adapter for u's scheme, or an UnsupportedScheme error
// for a scheme nobody recognizes, or a FeatureNotBuilt error for a scheme
// that is recognized but has no adapter: its backend wasn't compiled in, or
// was compiled in but not connected at Init.
func (d *Dispatcher) resolve(op string, u uri.URI) (backend.Adapter, error) {
	switch u.Scheme() {
	case uri.SchemeFile:
		return d.local, nil
	case uri.SchemeHDFS:
		if d.hdfs == nil {
			return nil, vfserrors.FeatureNotBuilt(op, u.String(), "hdfs")
		}
		return d.hdfs, nil
	case uri.SchemeS3:
		if d.s3 == nil {
			return nil, vfserrors.FeatureNotBuilt(op, u.String(), "s3")
		}
		return d.s3, nil
	default:
		return nil, vfserrors.UnsupportedScheme(op, u.String(), string(u.Scheme()))
	}
}

// backendPath converts u into the path string its own adapter expects.
// POSIX/HDFS adapters operate on the scheme-stripped filesystem path; the S3
// adapter expects bucket and key joined as a single path segment, since
// backend.Adapter's contract is scheme-agnostic.
func backendPath(u uri.URI) string {
	if u.IsS3() {
		return "/" + u.Bucket() + "/" + u.Key()
	}
	return u.ToPath()
}

func wrap(op string, u uri.URI, err error) error {
	if err == nil {
		return nil
	}
	if verr, ok := err.(*vfserrors.Error); ok {
		return verr
	}
	return vfserrors.Wrap(op, u.String(), err)
}

func (d *Dispatcher) CreateDir(ctx context.Context, u uri.URI) error {
	start := time.Now()
	a, err := d.resolve("create_dir", u)
	if err != nil {
		return err
	}
	err = wrap("create_dir", u, a.CreateDir(ctx, backendPath(u)))
	d.record("create_dir", 0, start, err)
	return err
}

func (d *Dispatcher) Touch(ctx context.Context, u uri.URI) error {
	start := time.Now()
	a, err := d.resolve("touch", u)
	if err != nil {
		return err
	}
	err = wrap("touch", u, a.Touch(ctx, backendPath(u)))
	d.record("touch", 0, start, err)
	return err
}

func (d *Dispatcher) RemoveDir(ctx context.Context, u uri.URI) error {
	start := time.Now()
	a, err := d.resolve("remove_dir", u)
	if err != nil {
		return err
	}
	err = wrap("remove_dir", u, a.RemoveDir(ctx, backendPath(u)))
	d.record("remove_dir", 0, start, err)
	return err
}

func (d *Dispatcher) RemoveFile(ctx context.Context, u uri.URI) error {
	start := time.Now()
	a, err := d.resolve("remove_file", u)
	if err != nil {
		return err
	}
	err = wrap("remove_file", u, a.RemoveFile(ctx, backendPath(u)))
	d.record("remove_file", 0, start, err)
	return err
}

// Ls returns the immediate children of parent as child URIs, byte-wise
// ascending by full URI string.
func (d *Dispatcher) Ls(ctx context.Context, parent uri.URI) ([]uri.URI, error) {
	a, err := d.resolve("ls", parent)
	if err != nil {
		return nil, err
	}
	entries, err := a.Ls(ctx, backendPath(parent))
	if err != nil {
		return nil, wrap("ls", parent, err)
	}
	children := make([]uri.URI, 0, len(entries))
	for _, e := range entries {
		children = append(children, parent.Join(e.Name))
	}
	sort.Slice(children, func(i, j int) bool { return children[i].String() < children[j].String() })
	return children, nil
}

func (d *Dispatcher) FileSize(ctx context.Context, u uri.URI) (uint64, error) {
	a, err := d.resolve("file_size", u)
	if err != nil {
		return 0, err
	}
	size, err := a.FileSize(ctx, backendPath(u))
	if err != nil {
		return 0, wrap("file_size", u, err)
	}
	return size, nil
}

func (d *Dispatcher) IsDir(ctx context.Context, u uri.URI) (bool, error) {
	a, err := d.resolve("is_dir", u)
	if err != nil {
		return false, err
	}
	return a.IsDir(ctx, backendPath(u))
}

func (d *Dispatcher) IsFile(ctx context.Context, u uri.URI) (bool, error) {
	a, err := d.resolve("is_file", u)
	if err != nil {
		return false, err
	}
	return a.IsFile(ctx, backendPath(u))
}

// MoveFile renames a single file. Both URIs must share a scheme, and if new
// already exists it is removed first.
func (d *Dispatcher) MoveFile(ctx context.Context, oldURI, newURI uri.URI) error {
	return d.move(ctx, "move_file", oldURI, newURI, false)
}

// MoveDir renames a directory and everything beneath it.
func (d *Dispatcher) MoveDir(ctx context.Context, oldURI, newURI uri.URI) error {
	return d.move(ctx, "move_dir", oldURI, newURI, true)
}

func (d *Dispatcher) move(ctx context.Context, op string, oldURI, newURI uri.URI, isDir bool) error {
	if oldURI.Scheme() != newURI.Scheme() {
		return vfserrors.CrossSchemeUnsupported(op, oldURI.String(), newURI.String())
	}
	a, err := d.resolve(op, oldURI)
	if err != nil {
		return err
	}
	if !isDir {
		if exists, _ := a.IsFile(ctx, backendPath(newURI)); exists {
			if err := a.RemoveFile(ctx, backendPath(newURI)); err != nil {
				return wrap(op, newURI, err)
			}
		}
	}
	return wrap(op, oldURI, a.Move(ctx, backendPath(oldURI), backendPath(newURI), isDir))
}

func (d *Dispatcher) Open(ctx context.Context, u uri.URI, mode backend.Mode) error {
	a, err := d.resolve("open_file", u)
	if err != nil {
		return err
	}
	return wrap("open_file", u, a.Open(ctx, backendPath(u), mode))
}

func (d *Dispatcher) Close(ctx context.Context, u uri.URI) error {
	a, err := d.resolve("close_file", u)
	if err != nil {
		return err
	}
	return wrap("close_file", u, a.Close(ctx, backendPath(u)))
}

// Read plans the requested range into sub-ranges and fans them out across
// d.pool via internal/planner.
func (d *Dispatcher) Read(ctx context.Context, u uri.URI, offset int64, buf []byte, nbytes int64) error {
	start := time.Now()
	a, err := d.resolve("read", u)
	if err != nil {
		return err
	}
	err = planner.Execute(ctx, d.pool, a, backendPath(u), offset, buf, nbytes, d.minParallelSize)
	d.record("read", nbytes, start, err)
	return err
}

func (d *Dispatcher) Write(ctx context.Context, u uri.URI, buf []byte, n int) (int, error) {
	start := time.Now()
	a, err := d.resolve("write", u)
	if err != nil {
		return 0, err
	}
	written, err := a.Write(ctx, backendPath(u), buf, n)
	if err != nil {
		err = wrap("write", u, err)
	}
	d.record("write", int64(written), start, err)
	return written, err
}

func (d *Dispatcher) Sync(ctx context.Context, u uri.URI) error {
	a, err := d.resolve("sync", u)
	if err != nil {
		return err
	}
	return wrap("sync", u, a.Sync(ctx, backendPath(u)))
}

// FileLockLock takes a real advisory lock on local schemes; on HDFS/S3 it is
// a no-op returning an inert token.
func (d *Dispatcher) FileLockLock(ctx context.Context, u uri.URI, shared bool) (backend.Token, error) {
	a, err := d.resolve("filelock_lock", u)
	if err != nil {
		return nil, err
	}
	locker, ok := a.(backend.Locker)
	if !ok {
		return nil, nil
	}
	token, err := locker.LockFile(ctx, backendPath(u), shared)
	if err != nil {
		return nil, wrap("filelock_lock", u, err)
	}
	return token, nil
}

func (d *Dispatcher) FileLockUnlock(ctx context.Context, u uri.URI, token backend.Token) error {
	a, err := d.resolve("filelock_unlock", u)
	if err != nil {
		return err
	}
	locker, ok := a.(backend.Locker)
	if !ok {
		return nil
	}
	return wrap("filelock_unlock", u, locker.UnlockFile(ctx, backendPath(u), token))
}

func (d *Dispatcher) bucketAdapter(op string, u uri.URI) (backend.BucketAdapter, error) {
	a, err := d.resolve(op, u)
	if err != nil {
		return nil, err
	}
	ba, ok := a.(backend.BucketAdapter)
	if !ok {
		return nil, vfserrors.UnsupportedScheme(op, u.String(), string(u.Scheme()))
	}
	return ba, nil
}

func (d *Dispatcher) CreateBucket(ctx context.Context, u uri.URI) error {
	ba, err := d.bucketAdapter("create_bucket", u)
	if err != nil {
		return err
	}
	return wrap("create_bucket", u, ba.CreateBucket(ctx, u.Bucket()))
}

func (d *Dispatcher) RemoveBucket(ctx context.Context, u uri.URI) error {
	ba, err := d.bucketAdapter("remove_bucket", u)
	if err != nil {
		return err
	}
	return wrap("remove_bucket", u, ba.RemoveBucket(ctx, u.Bucket()))
}

func (d *Dispatcher) EmptyBucket(ctx context.Context, u uri.URI) error {
	ba, err := d.bucketAdapter("empty_bucket", u)
	if err != nil {
		return err
	}
	return wrap("empty_bucket", u, ba.EmptyBucket(ctx, u.Bucket()))
}

func (d *Dispatcher) IsEmptyBucket(ctx context.Context, u uri.URI) (bool, error) {
	ba, err := d.bucketAdapter("is_empty_bucket", u)
	if err != nil {
		return false, err
	}
	empty, err := ba.IsEmptyBucket(ctx, u.Bucket())
	if err != nil {
		return false, wrap("is_empty_bucket", u, err)
	}
	return empty, nil
}

func (d *Dispatcher) IsBucket(ctx context.Context, u uri.URI) (bool, error) {
	ba, err := d.bucketAdapter("is_bucket", u)
	if err != nil {
		return false, err
	}
	isBucket, err := ba.IsBucket(ctx, u.Bucket())
	if err != nil {
		return false, wrap("is_bucket", u, err)
	}
	return isBucket, nil
}

// SupportsFS answers the supports_fs capability query.
func (d *Dispatcher) SupportsFS(b capability.Backend) bool {
	return d.caps.Supports(b)
}

// Shutdown releases every connected adapter's resources. Remote adapters are
// intentionally not disconnected beyond this.
func (d *Dispatcher) Shutdown() error {
	var first error
	for _, a := range []backend.Adapter{d.local, d.hdfs, d.s3} {
		if a == nil {
			continue
		}
		if err := a.Shutdown(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
