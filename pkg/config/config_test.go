package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() should validate cleanly, got %v", err)
	}
}

func TestValidateRejectsZeroMaxParallelOps(t *testing.T) {
	p := Default()
	p.MaxParallelOps = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for max_parallel_ops = 0")
	}
}

func TestValidateRejectsZeroMinParallelSize(t *testing.T) {
	p := Default()
	p.MinParallelSize = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for min_parallel_size = 0")
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vfs.yaml")
	contents := `
max_parallel_ops: 8
min_parallel_size: 1048576
s3_params:
  region: us-west-2
  scheme: https
  use_virtual_addressing: true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	params, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if params.MaxParallelOps != 8 {
		t.Errorf("MaxParallelOps = %d, want 8", params.MaxParallelOps)
	}
	if params.S3.Region != "us-west-2" {
		t.Errorf("S3.Region = %q, want us-west-2", params.S3.Region)
	}
	if !params.S3.UseVirtualAddressing {
		t.Error("expected UseVirtualAddressing to be true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/vfs.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
