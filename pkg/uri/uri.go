// Package uri implements the VFS's opaque URI value type: scheme, optional
// authority, and path. Parsing and canonicalization are intentionally thin —
// this package is treated by the rest of the VFS as an opaque value with
// scheme/path accessors, not a general-purpose URI library.
package uri

import (
	"net/url"
	"runtime"
	"strings"
)

// Scheme identifies which backend a URI addresses.
type Scheme string

const (
	SchemeFile    Scheme = "file"
	SchemeHDFS    Scheme = "hdfs"
	SchemeS3      Scheme = "s3"
	SchemeUnknown Scheme = ""
)

// URI is an opaque address value: scheme + optional authority + path. The
// scheme is decided once at construction and never changes; absolute vs.
// relative is a property of Path alone.
type URI struct {
	raw       string
	scheme    Scheme
	authority string
	path      string
}

// Parse decomposes raw into a URI. Any scheme other than file/hdfs/s3 is kept
// verbatim but classified as SchemeUnknown — callers (the Dispatcher) decide
// what to do with that, this package makes no judgment.
func Parse(raw string) URI {
	u := URI{raw: raw}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		// Not a well-formed scheme://... URI; treat the whole string as a path
		// with no scheme, which the Dispatcher will reject as UnsupportedScheme.
		u.path = raw
		return u
	}

	switch strings.ToLower(parsed.Scheme) {
	case "file":
		u.scheme = SchemeFile
	case "hdfs":
		u.scheme = SchemeHDFS
	case "s3":
		u.scheme = SchemeS3
	default:
		u.scheme = SchemeUnknown
	}

	u.authority = parsed.Host
	u.path = parsed.Path
	if u.path == "" && parsed.Opaque != "" {
		u.path = parsed.Opaque
	}
	return u
}

// Scheme returns the URI's scheme.
func (u URI) Scheme() Scheme { return u.scheme }

// Authority returns the URI's authority component (e.g. an S3 bucket name or
// an HDFS namenode host), empty for local file URIs.
func (u URI) Authority() string { return u.authority }

// IsFile reports whether the URI addresses the local filesystem.
func (u URI) IsFile() bool { return u.scheme == SchemeFile }

// IsHDFS reports whether the URI addresses HDFS.
func (u URI) IsHDFS() bool { return u.scheme == SchemeHDFS }

// IsS3 reports whether the URI addresses an S3-compatible object store.
func (u URI) IsS3() bool { return u.scheme == SchemeS3 }

// ToPath returns the URI with its scheme and authority stripped, i.e. the
// raw path the backend operates on.
func (u URI) ToPath() string { return u.path }

// String returns the original, unmodified URI string.
func (u URI) String() string { return u.raw }

// Bucket returns the authority as an S3 bucket name; only meaningful when
// IsS3() is true.
func (u URI) Bucket() string { return u.authority }

// Key returns the S3 object key: the path with its leading slash trimmed.
func (u URI) Key() string { return strings.TrimPrefix(u.path, "/") }

// Join appends child to the URI's path with exactly one separator, returning
// a new URI of the same scheme/authority. Used by Ls to build child URIs.
func (u URI) Join(child string) URI {
	sep := "/"
	base := strings.TrimSuffix(u.raw, sep)
	return Parse(base + sep + strings.TrimPrefix(child, sep))
}

// AbsPath is a pure, no-I/O path canonicalizer. If path already names a
// recognized scheme it is returned unchanged; otherwise it is
// treated as a host-native local path and canonicalized to a file:// URI,
// normalizing Windows drive letters (C:\...) to file:///C:/...
func AbsPath(path string) string {
	parsed := Parse(path)
	if parsed.scheme == SchemeFile || parsed.scheme == SchemeHDFS || parsed.scheme == SchemeS3 {
		return path
	}

	p := path
	if runtime.GOOS == "windows" {
		p = strings.ReplaceAll(p, `\`, "/")
		if len(p) >= 2 && p[1] == ':' {
			return "file:///" + p
		}
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
