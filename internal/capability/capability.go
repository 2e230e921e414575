// Package capability records which backends this build links in, via
// compile-time feature flags plus a runtime Registry. The Registry does not
// record per-operation support; whether a backend implements an optional
// operation (locking, bucket ops) is decided by the Dispatcher from the
// adapter's interfaces. "Not built" (the backend was excluded from this
// binary) and "not supported" (the scheme is recognized but the operation
// doesn't apply) are kept as distinct, separately reported conditions.
package capability

// Backend identifies one of the four backend kinds the registry tracks.
type Backend string

const (
	POSIX Backend = "POSIX"
	WIN   Backend = "WIN"
	HDFS  Backend = "HDFS"
	S3    Backend = "S3"
)

// Registry is the runtime-queryable record of which backends this build
// links in. POSIX or WIN is always present (selected by GOOS at compile
// time); HDFS and S3 are each controlled by a build tag (nohdfs, nos3) and
// may be absent.
type Registry struct {
	supported map[Backend]bool
}

// NewRegistry builds the registry for this build, based on GOOS (see
// local_unix.go / local_windows.go) and the hdfs/s3 build tags (see
// hdfs_on.go / hdfs_off.go / s3_on.go / s3_off.go).
func NewRegistry() *Registry {
	r := &Registry{supported: make(map[Backend]bool, 4)}
	r.supported[localBackend] = true
	r.supported[HDFS] = hdfsBuilt
	r.supported[S3] = s3Built
	return r
}

// Supports reports whether backend b is compiled into this build. It backs
// the PublicAPI's supports_fs query.
func (r *Registry) Supports(b Backend) bool {
	return r.supported[b]
}

// Backends returns the set of backends this build links in, for diagnostic
// snapshots (LifecycleController.Snapshot).
func (r *Registry) Backends() []Backend {
	out := make([]Backend, 0, len(r.supported))
	for b, ok := range r.supported {
		if ok {
			out = append(out, b)
		}
	}
	return out
}
