// Package errors provides the structured error taxonomy used across the VFS:
// a tagged (kind, message, cause) sum type so callers can branch on Kind
// without string matching.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the class of failure a VFS operation returned.
type Kind string

const (
	// KindUnsupportedScheme means the URI's scheme is not one of file/hdfs/s3.
	KindUnsupportedScheme Kind = "UNSUPPORTED_SCHEME"
	// KindFeatureNotBuilt means the scheme is recognized but this build omits
	// the backend (compile-time feature flag off).
	KindFeatureNotBuilt Kind = "FEATURE_NOT_BUILT"
	// KindNotInitialized means the VFS was used before Init or after Shutdown.
	KindNotInitialized Kind = "NOT_INITIALIZED"
	// KindNotFound means the target entity does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindAlreadyExists means an adapter surfaced a pre-existing conflicting entity.
	KindAlreadyExists Kind = "ALREADY_EXISTS"
	// KindCrossSchemeUnsupported means a move's old/new URIs differ in scheme.
	KindCrossSchemeUnsupported Kind = "CROSS_SCHEME_UNSUPPORTED"
	// KindAppendUnsupported means open_file(APPEND) was requested on S3.
	KindAppendUnsupported Kind = "APPEND_UNSUPPORTED"
	// KindBackendError wraps any adapter-level failure (I/O, network, auth).
	KindBackendError Kind = "BACKEND_ERROR"
	// KindParallelReadError is the aggregate kind returned when any sub-range
	// of a parallel read fails.
	KindParallelReadError Kind = "PARALLEL_READ_ERROR"
	// KindInvalidArgument means the caller violated an operation's precondition.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
)

// Error is the VFS's structured error: every error a file operation routed
// through the Dispatcher returns is one of these (Init's configuration and
// connect failures are plain wrapped errors). It always carries the URI and
// operation name so callers can act on failures without parsing message
// strings.
type Error struct {
	Kind      Kind
	Op        string // operation name, e.g. "create_dir", "read"
	URI       string
	Message   string
	Backend   string // set on FeatureNotBuilt to name the absent backend
	Cause     error
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("%s %s: %s (backend %s not built)", e.Op, e.URI, e.Message, e.Backend)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URI, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.URI, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, &Error{Kind: KindNotFound}) style matching on Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an Error for op/uri with the given kind and message.
func New(kind Kind, op, uri, message string) *Error {
	return &Error{Kind: kind, Op: op, URI: uri, Message: message, Timestamp: time.Now()}
}

// Wrap constructs a KindBackendError carrying cause as the underlying failure.
func Wrap(op, uri string, cause error) *Error {
	return &Error{
		Kind:      KindBackendError,
		Op:        op,
		URI:       uri,
		Message:   "backend operation failed",
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// UnsupportedScheme builds the error for a URI whose scheme is unrecognized.
func UnsupportedScheme(op, uri, scheme string) *Error {
	return New(KindUnsupportedScheme, op, uri, fmt.Sprintf("scheme %q is not recognized", scheme))
}

// FeatureNotBuilt builds the error for a recognized scheme whose backend this
// build omits.
func FeatureNotBuilt(op, uri, backend string) *Error {
	return &Error{
		Kind:      KindFeatureNotBuilt,
		Op:        op,
		URI:       uri,
		Message:   "backend not compiled into this build",
		Backend:   backend,
		Timestamp: time.Now(),
	}
}

// NotInitialized builds the error for operations called before Init or after
// Shutdown.
func NotInitialized(op, uri string) *Error {
	return New(KindNotInitialized, op, uri, "vfs is not initialized")
}

// NotFound builds the error for a missing required entity.
func NotFound(op, uri string) *Error {
	return New(KindNotFound, op, uri, "no such file or directory")
}

// CrossSchemeUnsupported builds the error for a move whose endpoints differ
// in scheme.
func CrossSchemeUnsupported(op, oldURI, newURI string) *Error {
	return New(KindCrossSchemeUnsupported, op, oldURI,
		fmt.Sprintf("cannot move across schemes to %s", newURI))
}

// AppendUnsupported builds the error for open_file(APPEND) on S3.
func AppendUnsupported(op, uri string) *Error {
	return New(KindAppendUnsupported, op, uri, "append mode is not supported on this backend")
}

// ParallelReadError builds the aggregate error for a failed parallel read,
// preserving the first underlying failure's message where available.
func ParallelReadError(op, uri string, first error) *Error {
	e := New(KindParallelReadError, op, uri, "parallel read error")
	if first != nil {
		e.Cause = first
	}
	return e
}

// Retryable reports whether an error's Kind is one the caller may choose to
// retry. The VFS itself never retries automatically; this is informational.
func Retryable(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == KindBackendError
}

// KindOf extracts the Kind from err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	e, ok := err.(*Error)
	if !ok {
		return ""
	}
	return e.Kind
}
