// Package vfs is a Virtual File System façade that unifies local POSIX,
// local Windows, HDFS, and S3-compatible object stores behind one
// URI-addressed interface, and parallelizes large reads across a bounded
// worker pool.
//
// A VFS is created uninitialized; call Init before using it, and Shutdown
// when done:
//
//	v := vfs.New()
//	if err := v.Init(ctx, config.Default()); err != nil {
//		log.Fatal(err)
//	}
//	defer v.Shutdown()
//
//	if err := v.CreateDir(ctx, "file:///var/data/batch-01"); err != nil {
//		log.Fatal(err)
//	}
//
// URIs are addressed by scheme: file://, hdfs://namenode/path, or
// s3://bucket/key. AbsPath canonicalizes a bare local path into a file://
// URI. Operations against hdfs:// or s3:// URIs fail with a FeatureNotBuilt
// error when this binary was compiled without that backend (see the
// nohdfs/nos3 build tags).
package vfs
