// Package backend defines the Adapter contract every backend implements and
// the optional capability interfaces (locking, bucket ops) only some
// backends satisfy. The Dispatcher type-asserts an Adapter against these to
// decide whether an operation is UnsupportedScheme-for-this-backend or
// genuinely implemented.
package backend

import "context"

// Mode is the open mode a file is opened under.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeAppend
)

// Entry is one child returned by Ls: a path segment relative to the listed
// parent, plus whether it is itself a directory-like prefix.
type Entry struct {
	Name  string
	IsDir bool
}

// Adapter is the capability set every backend implements. Paths are
// scheme-stripped (URI.ToPath()/Key()); the Dispatcher owns URI
// construction and scheme routing.
type Adapter interface {
	CreateDir(ctx context.Context, path string) error
	Touch(ctx context.Context, path string) error
	RemoveDir(ctx context.Context, path string) error
	RemoveFile(ctx context.Context, path string) error
	Ls(ctx context.Context, path string) ([]Entry, error)
	FileSize(ctx context.Context, path string) (uint64, error)
	IsDir(ctx context.Context, path string) (bool, error)
	IsFile(ctx context.Context, path string) (bool, error)

	// Move performs an intra-scheme rename. isDir distinguishes move_dir
	// from move_file only where the backend needs to (S3's prefix rename).
	Move(ctx context.Context, oldPath, newPath string, isDir bool) error

	Open(ctx context.Context, path string, mode Mode) error
	Close(ctx context.Context, path string) error
	Read(ctx context.Context, path string, offset int64, buf []byte, n int) (int, error)
	Write(ctx context.Context, path string, buf []byte, n int) (int, error)
	Sync(ctx context.Context, path string) error

	// HealthCheck is used by LifecycleController at Init to verify a remote
	// backend is reachable before the VFS is considered initialized.
	HealthCheck(ctx context.Context) error

	// Shutdown releases any held resources (open files, buffers). Called
	// once by LifecycleController.Shutdown.
	Shutdown() error
}

// Token is the opaque lock handle filelock_lock returns. Remote backends
// hand back an inert Token with no behavior.
type Token interface{}

// Locker is implemented by backends with real advisory locking (POSIX,
// Windows). Backends without it (HDFS, S3) leave filelock_lock/unlock as
// VFS-layer no-ops handled uniformly by the Dispatcher.
type Locker interface {
	LockFile(ctx context.Context, path string, shared bool) (Token, error)
	UnlockFile(ctx context.Context, path string, token Token) error
}

// BucketAdapter is implemented only by the S3 backend: bucket-level
// operations are defined only for scheme=s3.
type BucketAdapter interface {
	CreateBucket(ctx context.Context, bucket string) error
	RemoveBucket(ctx context.Context, bucket string) error
	EmptyBucket(ctx context.Context, bucket string) error
	IsEmptyBucket(ctx context.Context, bucket string) (bool, error)
	IsBucket(ctx context.Context, bucket string) (bool, error)
}
