// Package hdfsfs implements the HDFS backend adapter on top of
// github.com/colinmarc/hdfs/v2, grounded on the rclone hdfs backend's
// fs.go/object.go (client.Stat/ReadDir/MkdirAll/Rename/Remove/Open/Create
// call shapes). Compiled only when the nohdfs build tag is absent; see
// ../../capability's hdfs_on.go/hdfs_off.go for the matching capability flag.
package hdfsfs

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/colinmarc/hdfs/v2"

	"github.com/arrayvfs/vfs/internal/backend"
	"github.com/arrayvfs/vfs/pkg/config"
	vfserrors "github.com/arrayvfs/vfs/pkg/errors"
)

// Adapter is the HDFS backend, holding one long-lived client connection to
// the namenode for the VFS's lifetime.
type Adapter struct {
	client *hdfs.Client

	mu   sync.Mutex
	open map[string]*openFile
}

type openFile struct {
	reader *hdfs.FileReader
	writer *hdfs.FileWriter
}

// Connect dials the namenode named in params and returns a ready Adapter.
// LifecycleController wraps this call in retry + circuit breaker, since a
// namenode connect is exactly the kind of flaky remote call those exist for.
func Connect(_ context.Context, params config.HDFSParams) (*Adapter, error) {
	opts := hdfs.ClientOptions{
		Addresses: []string{params.NameNode},
		User:      params.User,
	}
	client, err := hdfs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client, open: make(map[string]*openFile)}, nil
}

func (a *Adapter) CreateDir(_ context.Context, path string) error {
	return a.client.MkdirAll(path, 0o755)
}

func (a *Adapter) Touch(_ context.Context, path string) error {
	if _, err := a.client.Stat(path); err == nil {
		now := time.Now()
		return a.client.Chtimes(path, now, now)
	}
	w, err := a.client.Create(path)
	if err != nil {
		return err
	}
	return w.Close()
}

func (a *Adapter) RemoveDir(_ context.Context, path string) error {
	return a.client.RemoveAll(path)
}

func (a *Adapter) RemoveFile(_ context.Context, path string) error {
	if err := a.client.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return vfserrors.NotFound("remove_file", path)
		}
		return err
	}
	return nil
}

func (a *Adapter) Ls(_ context.Context, path string) ([]backend.Entry, error) {
	infos, err := a.client.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]backend.Entry, 0, len(infos))
	for _, info := range infos {
		out = append(out, backend.Entry{Name: info.Name(), IsDir: info.IsDir()})
	}
	return out, nil
}

func (a *Adapter) FileSize(_ context.Context, path string) (uint64, error) {
	info, err := a.client.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, vfserrors.NotFound("file_size", path)
		}
		return 0, err
	}
	return uint64(info.Size()), nil
}

func (a *Adapter) IsDir(_ context.Context, path string) (bool, error) {
	info, err := a.client.Stat(path)
	if err != nil {
		return false, nil
	}
	return info.IsDir(), nil
}

func (a *Adapter) IsFile(_ context.Context, path string) (bool, error) {
	info, err := a.client.Stat(path)
	if err != nil {
		return false, nil
	}
	return !info.IsDir(), nil
}

func (a *Adapter) Move(_ context.Context, oldPath, newPath string, _ bool) error {
	return a.client.Rename(oldPath, newPath)
}

func (a *Adapter) Open(_ context.Context, path string, mode backend.Mode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch mode {
	case backend.ModeRead:
		r, err := a.client.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return vfserrors.NotFound("open_file", path)
			}
			return err
		}
		a.open[path] = &openFile{reader: r}
	case backend.ModeWrite:
		if _, err := a.client.Stat(path); err == nil {
			if err := a.client.Remove(path); err != nil {
				return err
			}
		}
		w, err := a.client.Create(path)
		if err != nil {
			return err
		}
		a.open[path] = &openFile{writer: w}
	case backend.ModeAppend:
		var w *hdfs.FileWriter
		var err error
		if _, statErr := a.client.Stat(path); statErr == nil {
			w, err = a.client.Append(path)
		} else {
			w, err = a.client.Create(path)
		}
		if err != nil {
			return err
		}
		a.open[path] = &openFile{writer: w}
	}
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
	if of.writer != nil {
		return of.writer.Close()
	}
	if of.reader != nil {
		return of.reader.Close()
	}
	return nil
}

func (a *Adapter) Read(_ context.Context, path string, offset int64, buf []byte, n int) (int, error) {
	r, err := a.client.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, vfserrors.NotFound("read", path)
		}
		return 0, err
	}
	defer r.Close()

	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	read := 0
	for read < n {
		m, err := r.Read(buf[read:n])
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
	if !ok || of.writer == nil {
		return 0, vfserrors.New(vfserrors.KindInvalidArgument, "write", path, "file is not open for writing")
	}
	return of.writer.Write(buf[:n])
}

func (a *Adapter) Sync(_ context.Context, path string) error {
	a.mu.Lock()
	of, ok := a.open[path]
	a.mu.Unlock()
	if !ok || of.writer == nil {
		return nil
	}
	return of.writer.Flush()
}

func (a *Adapter) HealthCheck(_ context.Context) error {
	_, err := a.client.Stat("/")
	return err
}

func (a *Adapter) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, of := range a.open {
		if of.writer != nil {
			of.writer.Close()
		}
		if of.reader != nil {
			of.reader.Close()
		}
	}
	a.open = make(map[string]*openFile)
	// The namenode connection is deliberately left open; it is released
	// when the client itself is garbage-collected.
	return nil
}

