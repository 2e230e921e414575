// Package config holds VfsParams, the VFS's recognized configuration
// options, and a YAML loader.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// HDFSParams is opaque to the VFS core beyond being passed to the HDFS
// adapter at connect time.
type HDFSParams struct {
	NameNode string `yaml:"name_node"`
	User     string `yaml:"user"`
	Kerberos bool   `yaml:"kerberos"`
}

// S3Params configures the S3 adapter.
type S3Params struct {
	Region               string `yaml:"region"`
	Scheme               string `yaml:"scheme"` // "http" or "https"
	EndpointOverride     string `yaml:"endpoint_override"`
	UseVirtualAddressing bool   `yaml:"use_virtual_addressing"`
	FileBufferSize       int64  `yaml:"file_buffer_size"`
	ConnectTimeoutMs      int   `yaml:"connect_timeout_ms"`
	RequestTimeoutMs      int   `yaml:"request_timeout_ms"`
}

// VfsParams is the VFS's configuration snapshot. All fields recognized here
// are the ones the PublicAPI/Dispatcher/Planner consult; anything else a
// caller passes is ignored, not rejected.
type VfsParams struct {
	MaxParallelOps  int        `yaml:"max_parallel_ops"`
	MinParallelSize int64      `yaml:"min_parallel_size"`
	HDFS            HDFSParams `yaml:"hdfs_params"`
	S3              S3Params   `yaml:"s3_params"`
}

// Default returns the implementation-defined defaults for fields a caller
// leaves unspecified.
func Default() VfsParams {
	return VfsParams{
		MaxParallelOps:  4,
		MinParallelSize: 4 * 1024 * 1024,
		S3: S3Params{
			Scheme:         "https",
			FileBufferSize: 64 * 1024 * 1024,
			ConnectTimeoutMs: 10_000,
			RequestTimeoutMs: 30_000,
		},
	}
}

// Validate enforces the configuration invariants: max_parallel_ops >= 1,
// min_parallel_size >= 1.
func (p VfsParams) Validate() error {
	if p.MaxParallelOps < 1 {
		return fmt.Errorf("max_parallel_ops must be >= 1, got %d", p.MaxParallelOps)
	}
	if p.MinParallelSize < 1 {
		return fmt.Errorf("min_parallel_size must be >= 1, got %d", p.MinParallelSize)
	}
	return nil
}

// Load reads VfsParams from a YAML file at path, filling unset fields from
// Default().
func Load(path string) (VfsParams, error) {
	params := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return VfsParams{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return VfsParams{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := params.Validate(); err != nil {
		return VfsParams{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return params, nil
}
