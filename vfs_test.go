package vfs

import (
	"context"
	"os"
	"testing"

	"github.com/arrayvfs/vfs/internal/capability"
	"github.com/arrayvfs/vfs/pkg/config"
	vfserrors "github.com/arrayvfs/vfs/pkg/errors"
)

func newTestVFS(t *testing.T) (*VFS, string) {
	t.Helper()
	dir := t.TempDir()
	v := New()
	if err := v.Init(context.Background(), config.Default()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		v.mu.RLock()
		initialized := v.initialized
		v.mu.RUnlock()
		if !initialized {
			return
		}
		if err := v.Shutdown(); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
	return v, dir
}

func TestEveryOperationFailsBeforeInit(t *testing.T) {
	v := New()
	ctx := context.Background()
	if err := v.CreateDir(ctx, "file:///tmp/x"); vfserrors.KindOf(err) != vfserrors.KindNotInitialized {
		t.Fatalf("KindOf(err) = %v, want KindNotInitialized", vfserrors.KindOf(err))
	}
	if v.SupportsFS(capability.HDFS) {
		t.Error("SupportsFS should report false before Init since no Dispatcher exists yet")
	}
}

func TestSupportsFSAfterInit(t *testing.T) {
	v, _ := newTestVFS(t)
	// One of POSIX/WIN is always compiled in, selected by GOOS; HDFS/S3
	// support depends on the nohdfs/nos3 build tags and isn't asserted here.
	snap, err := v.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Backends) == 0 {
		t.Fatal("expected at least one backend reported")
	}
	if !v.SupportsFS(snap.Backends[0]) {
		t.Errorf("SupportsFS(%v) = false, want true (reported by Snapshot)", snap.Backends[0])
	}
}

func TestOperationsFailAfterShutdown(t *testing.T) {
	v, dir := newTestVFS(t)
	ctx := context.Background()
	u := v.AbsPath(dir)

	if err := v.CreateDir(ctx, u+"/sub"); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	if err := v.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := v.CreateDir(ctx, u+"/sub2"); vfserrors.KindOf(err) != vfserrors.KindNotInitialized {
		t.Fatalf("KindOf(err) = %v, want KindNotInitialized", vfserrors.KindOf(err))
	}
}

func TestPosixRoundTrip(t *testing.T) {
	v, dir := newTestVFS(t)
	ctx := context.Background()
	fileURI := v.AbsPath(dir + "/data.bin")

	if err := v.Touch(ctx, fileURI); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := v.Open(ctx, fileURI, ModeWrite); err != nil {
		t.Fatalf("Open(write): %v", err)
	}
	payload := []byte("hello vfs")
	n, err := v.Write(ctx, fileURI, payload, len(payload))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("Write wrote %d bytes, want %d", n, len(payload))
	}
	if err := v.Sync(ctx, fileURI); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := v.Close(ctx, fileURI); err != nil {
		t.Fatalf("Close: %v", err)
	}

	size, err := v.FileSize(ctx, fileURI)
	if err != nil {
		t.Fatalf("FileSize: %v", err)
	}
	if size != uint64(len(payload)) {
		t.Fatalf("FileSize = %d, want %d", size, len(payload))
	}

	if err := v.Open(ctx, fileURI, ModeRead); err != nil {
		t.Fatalf("Open(read): %v", err)
	}
	buf := make([]byte, len(payload))
	if err := v.Read(ctx, fileURI, 0, buf, int64(len(payload))); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf) != string(payload) {
		t.Fatalf("Read = %q, want %q", buf, payload)
	}
	if err := v.Close(ctx, fileURI); err != nil {
		t.Fatalf("Close: %v", err)
	}

	isFile, err := v.IsFile(ctx, fileURI)
	if err != nil || !isFile {
		t.Fatalf("IsFile = %v, %v, want true, nil", isFile, err)
	}
	if err := v.RemoveFile(ctx, fileURI); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
}

func TestCreateDirTouchLsRemoveDir(t *testing.T) {
	v, dir := newTestVFS(t)
	ctx := context.Background()
	dirURI := v.AbsPath(dir + "/batch")

	if err := v.CreateDir(ctx, dirURI); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	isDir, err := v.IsDir(ctx, dirURI)
	if err != nil || !isDir {
		t.Fatalf("IsDir = %v, %v, want true, nil", isDir, err)
	}
	if err := v.Touch(ctx, dirURI+"/a.txt"); err != nil {
		t.Fatalf("Touch a.txt: %v", err)
	}
	if err := v.Touch(ctx, dirURI+"/b.txt"); err != nil {
		t.Fatalf("Touch b.txt: %v", err)
	}

	children, err := v.Ls(ctx, dirURI)
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("Ls returned %d entries, want 2", len(children))
	}

	if err := v.RemoveFile(ctx, dirURI+"/a.txt"); err != nil {
		t.Fatalf("RemoveFile a.txt: %v", err)
	}
	if err := v.RemoveFile(ctx, dirURI+"/b.txt"); err != nil {
		t.Fatalf("RemoveFile b.txt: %v", err)
	}
	if err := v.RemoveDir(ctx, dirURI); err != nil {
		t.Fatalf("RemoveDir: %v", err)
	}
}

func TestMoveFile(t *testing.T) {
	v, dir := newTestVFS(t)
	ctx := context.Background()
	oldURI := v.AbsPath(dir + "/old.txt")
	newURI := v.AbsPath(dir + "/new.txt")

	if err := v.Touch(ctx, oldURI); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := v.MoveFile(ctx, oldURI, newURI); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if isFile, _ := v.IsFile(ctx, oldURI); isFile {
		t.Error("old path should no longer be a file")
	}
	if isFile, err := v.IsFile(ctx, newURI); err != nil || !isFile {
		t.Fatalf("IsFile(new) = %v, %v, want true, nil", isFile, err)
	}
}

func TestCrossSchemeMoveRejected(t *testing.T) {
	v, dir := newTestVFS(t)
	ctx := context.Background()
	oldURI := v.AbsPath(dir + "/old.txt")

	if err := v.Touch(ctx, oldURI); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	err := v.MoveFile(ctx, oldURI, "s3://bucket/key")
	if vfserrors.KindOf(err) != vfserrors.KindCrossSchemeUnsupported {
		t.Fatalf("KindOf(err) = %v, want KindCrossSchemeUnsupported", vfserrors.KindOf(err))
	}
}

func TestParallelReadAcrossLargeFile(t *testing.T) {
	v, dir := newTestVFS(t)
	ctx := context.Background()
	fileURI := v.AbsPath(dir + "/large.bin")

	params := config.Default()
	params.MinParallelSize = 16
	params.MaxParallelOps = 4
	if err := v.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := v.Init(ctx, params); err != nil {
		t.Fatalf("Init: %v", err)
	}

	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	if err := os.WriteFile(dir+"/large.bin", payload, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := v.Open(ctx, fileURI, ModeRead); err != nil {
		t.Fatalf("Open: %v", err)
	}
	buf := make([]byte, len(payload))
	if err := v.Read(ctx, fileURI, 0, buf, int64(len(payload))); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf) != string(payload) {
		t.Fatal("parallel read returned mismatched data")
	}
	if err := v.Close(ctx, fileURI); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSnapshotReportsConfiguredBackends(t *testing.T) {
	v, _ := newTestVFS(t)
	snap, err := v.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Backends) == 0 {
		t.Error("Snapshot should report at least one supported backend")
	}
}

func TestInitRejectsInvalidParams(t *testing.T) {
	v := New()
	params := config.Default()
	params.MaxParallelOps = 0
	if err := v.Init(context.Background(), params); err == nil {
		t.Fatal("Init should reject invalid params")
	}
}
