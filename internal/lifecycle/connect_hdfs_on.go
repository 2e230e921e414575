//go:build !nohdfs

package lifecycle

import (
	"context"

	"github.com/arrayvfs/vfs/internal/backend"
	"github.com/arrayvfs/vfs/internal/backend/hdfsfs"
	"github.com/arrayvfs/vfs/pkg/config"
)

// connectHDFS connects the HDFS client when this build links the hdfs
// backend in. An empty NameNode means the caller never configured HDFS for
// this VFS instance, so Init skips it rather than failing.
func connectHDFS(ctx context.Context, params config.HDFSParams) (backend.Adapter, error) {
	if params.NameNode == "" {
		return nil, nil
	}
	var adapter *hdfsfs.Adapter
	err := connectRemote(func() error {
		a, err := hdfsfs.Connect(ctx, params)
		if err != nil {
			return err
		}
		if err := a.HealthCheck(ctx); err != nil {
			return err
		}
		adapter = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adapter, nil
}
