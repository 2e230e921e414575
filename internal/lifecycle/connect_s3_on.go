//go:build !nos3

package lifecycle

import (
	"context"

	"github.com/arrayvfs/vfs/internal/backend"
	"github.com/arrayvfs/vfs/internal/backend/s3fs"
	"github.com/arrayvfs/vfs/pkg/config"
)

// connectS3 builds the S3 client when this build links the s3 backend in.
// Neither Region nor EndpointOverride being set means the caller never
// configured S3 for this VFS instance, so Init skips it rather than failing.
func connectS3(ctx context.Context, params config.S3Params) (backend.Adapter, error) {
	if params.Region == "" && params.EndpointOverride == "" {
		return nil, nil
	}
	var adapter *s3fs.Adapter
	err := connectRemote(func() error {
		a, err := s3fs.Connect(ctx, params)
		if err != nil {
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
