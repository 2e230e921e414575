//go:build nohdfs

package lifecycle

import (
	"context"

	"github.com/arrayvfs/vfs/internal/backend"
	"github.com/arrayvfs/vfs/pkg/config"
)

// connectHDFS never connects anything in a nohdfs build; the hdfsfs package
// is not even imported here, so a nohdfs binary never links colinmarc/hdfs.
func connectHDFS(_ context.Context, _ config.HDFSParams) (backend.Adapter, error) {
	return nil, nil
}
