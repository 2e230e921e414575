//go:build !windows

package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arrayvfs/vfs/internal/backend"
)

func TestCreateDirTouchAndLs(t *testing.T) {
	dir := t.TempDir()
	a := New()
	ctx := context.Background()

	sub := filepath.Join(dir, "sub")
	if err := a.CreateDir(ctx, sub); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	if err := a.CreateDir(ctx, sub); err != nil {
		t.Fatalf("CreateDir idempotent: %v", err)
	}

	file := filepath.Join(sub, "a.txt")
	if err := a.Touch(ctx, file); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	entries, err := a.Ls(ctx, sub)
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" || entries[0].IsDir {
		t.Errorf("Ls = %+v, want single file a.txt", entries)
	}
}

func TestWriteOpenCloseAndRead(t *testing.T) {
	dir := t.TempDir()
	a := New()
	ctx := context.Background()
	path := filepath.Join(dir, "data.bin")

	if err := a.Open(ctx, path, backend.ModeWrite); err != nil {
		t.Fatalf("Open write: %v", err)
	}
	payload := []byte("hello vfs")
	n, err := a.Write(ctx, path, payload, len(payload))
	if err != nil || n != len(payload) {
		t.Fatalf("Write = %d,%v want %d,nil", n, err, len(payload))
	}
	if err := a.Close(ctx, path); err != nil {
		t.Fatalf("Close: %v", err)
	}

	size, err := a.FileSize(ctx, path)
	if err != nil || size != uint64(len(payload)) {
		t.Fatalf("FileSize = %d,%v want %d,nil", size, err, len(payload))
	}

	buf := make([]byte, len(payload))
	n, err = a.Read(ctx, path, 0, buf, len(buf))
	if err != nil || n != len(payload) || string(buf) != string(payload) {
		t.Fatalf("Read = %d,%v,%q want %d,nil,%q", n, err, buf, len(payload), payload)
	}
}

func TestFileSizeNotFound(t *testing.T) {
	a := New()
	ctx := context.Background()
	if _, err := a.FileSize(ctx, "/nonexistent/path/x"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	a := New()
	ctx := context.Background()
	oldPath := filepath.Join(dir, "old.txt")
	newPath := filepath.Join(dir, "new.txt")

	if err := a.Touch(ctx, oldPath); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := a.Move(ctx, oldPath, newPath, false); err != nil {
		t.Fatalf("Move: %v", err)
	}
	isFile, _ := a.IsFile(ctx, newPath)
	if !isFile {
		t.Error("expected new path to be a file after move")
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("expected old path to no longer exist")
	}
}

func TestLockFileExclusiveThenShared(t *testing.T) {
	dir := t.TempDir()
	a := New()
	ctx := context.Background()
	path := filepath.Join(dir, "lock.txt")

	tok, err := a.LockFile(ctx, path, false)
	if err != nil {
		t.Fatalf("LockFile: %v", err)
	}
	if err := a.UnlockFile(ctx, path, tok); err != nil {
		t.Fatalf("UnlockFile: %v", err)
	}

	tok, err = a.LockFile(ctx, path, true)
	if err != nil {
		t.Fatalf("LockFile shared: %v", err)
	}
	if err := a.UnlockFile(ctx, path, tok); err != nil {
		t.Fatalf("UnlockFile shared: %v", err)
	}
}

func TestRemoveFileNotFound(t *testing.T) {
	a := New()
	ctx := context.Background()
	if err := a.RemoveFile(ctx, "/nonexistent/path/x"); err == nil {
		t.Error("expected error removing missing file")
	}
}
