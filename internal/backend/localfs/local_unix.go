//go:build !windows

// Package localfs implements the POSIX/Windows local-disk backend adapter.
// This file covers every non-Windows GOOS; local_windows.go covers GOOS=windows.
// The full operation set is implemented on both platforms; locks are
// advisory and use the host's native locking API (flock(2) / LockFileEx).
package localfs

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/arrayvfs/vfs/internal/backend"
	vfserrors "github.com/arrayvfs/vfs/pkg/errors"
)

// Adapter is the POSIX local-disk backend.
type Adapter struct {
	mu   sync.Mutex
	open map[string]*openFile
}

type openFile struct {
	f    *os.File
	mode backend.Mode
}

// New constructs a POSIX Adapter. It takes no reference to the worker pool:
// the local adapter performs its own I/O synchronously; fan-out across reads
// is the ParallelReadPlanner's concern, not the adapter's.
func New() *Adapter {
	return &Adapter{open: make(map[string]*openFile)}
}

func (a *Adapter) CreateDir(_ context.Context, path string) error {
	if err := os.Mkdir(path, 0o755); err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	return nil
}

func (a *Adapter) Touch(_ context.Context, path string) error {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		now := time.Now()
		return os.Chtimes(path, now, now)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	return f.Close()
}

func (a *Adapter) RemoveDir(_ context.Context, path string) error {
	return os.RemoveAll(path)
}

func (a *Adapter) RemoveFile(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return vfserrors.NotFound("remove_file", path)
		}
		return err
	}
	return nil
}

func (a *Adapter) Ls(_ context.Context, path string) ([]backend.Entry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]backend.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, backend.Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

func (a *Adapter) FileSize(_ context.Context, path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, vfserrors.NotFound("file_size", path)
		}
		return 0, err
	}
	if info.IsDir() {
		return 0, vfserrors.New(vfserrors.KindInvalidArgument, "file_size", path, "is a directory")
	}
	return uint64(info.Size()), nil
}

func (a *Adapter) IsDir(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	return info.IsDir(), nil
}

func (a *Adapter) IsFile(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	return !info.IsDir(), nil
}

func (a *Adapter) Move(_ context.Context, oldPath, newPath string, _ bool) error {
	return os.Rename(oldPath, newPath)
}

func (a *Adapter) Open(_ context.Context, path string, mode backend.Mode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var f *os.File
	var err error
	switch mode {
	case backend.ModeRead:
		if _, statErr := os.Stat(path); statErr != nil {
			return vfserrors.NotFound("open_file", path)
		}
		f, err = os.Open(path)
	case backend.ModeWrite:
		if _, statErr := os.Stat(path); statErr == nil {
			if rmErr := os.Remove(path); rmErr != nil {
				return rmErr
			}
		}
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	case backend.ModeAppend:
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
	if err != nil {
		return err
	}
	a.open[path] = &openFile{f: f, mode: mode}
	return nil
}

func (a *Adapter) Close(_ context.Context, path string) error {
	a.mu.Lock()
	of, ok := a.open[path]
	delete(a.open, path)
	a.mu.Unlock()
	if !ok {
		return nil
	}
	if err := of.f.Sync(); err != nil {
		of.f.Close()
		return err
	}
	return of.f.Close()
}

func (a *Adapter) Read(_ context.Context, path string, offset int64, buf []byte, n int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, vfserrors.NotFound("read", path)
		}
		return 0, err
	}
	defer f.Close()

	read := 0
	for read < n {
		m, err := f.ReadAt(buf[read:n], offset+int64(read))
		read += m
		if err != nil {
			if err == io.EOF {
				break
			}
			return read, err
		}
	}
	return read, nil
}

func (a *Adapter) Write(_ context.Context, path string, buf []byte, n int) (int, error) {
	a.mu.Lock()
	of, ok := a.open[path]
	a.mu.Unlock()
	if !ok {
		return 0, vfserrors.New(vfserrors.KindInvalidArgument, "write", path, "file is not open for writing")
	}
	return of.f.Write(buf[:n])
}

func (a *Adapter) Sync(_ context.Context, path string) error {
	a.mu.Lock()
	of, ok := a.open[path]
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return of.f.Sync()
}

func (a *Adapter) HealthCheck(_ context.Context) error {
	return nil
}

func (a *Adapter) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, of := range a.open {
		of.f.Close()
	}
	a.open = make(map[string]*openFile)
	return nil
}

// LockFile takes an advisory flock(2) lock, blocking until it is granted.
// Each call opens its own descriptor, and flock(2) treats descriptors
// independently, so the lock is not reentrant: a conflicting second lock on
// the same path from this process waits just as one from another process
// does.
func (a *Adapter) LockFile(_ context.Context, path string, shared bool) (backend.Token, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	how := unix.LOCK_EX
	if shared {
		how = unix.LOCK_SH
	}
	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return nil, err
	}
	return &localLockToken{f: f}, nil
}

// UnlockFile releases a lock taken by LockFile.
func (a *Adapter) UnlockFile(_ context.Context, _ string, token backend.Token) error {
	t, ok := token.(*localLockToken)
	if !ok || t == nil {
		return nil
	}
	if err := unix.Flock(int(t.f.Fd()), unix.LOCK_UN); err != nil {
		t.f.Close()
		return err
	}
	return t.f.Close()
}

type localLockToken struct {
	f *os.File
}
