//go:build nos3

package lifecycle

import (
	"context"

	"github.com/arrayvfs/vfs/internal/backend"
	"github.com/arrayvfs/vfs/pkg/config"
)

// connectS3 never connects anything in a nos3 build; the s3fs package is not
// even imported here, so a nos3 binary never links aws-sdk-go-v2/cargoship.
func connectS3(_ context.Context, _ config.S3Params) (backend.Adapter, error) {
	return nil, nil
}
