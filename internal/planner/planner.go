// Package planner decomposes a single read into contiguous, non-overlapping
// sub-ranges and fans them out across an injected ThreadPool. Plan is a pure
// function, independently testable without any I/O, kept separate from the
// worker pool it feeds.
package planner

import (
	"context"

	"go.uber.org/multierr"

	"github.com/arrayvfs/vfs/internal/backend"
	"github.com/arrayvfs/vfs/pkg/errors"
	"github.com/arrayvfs/vfs/pkg/threadpool"
)

// SubRange is one contiguous, non-overlapping chunk of a larger read.
// BufOffset is relative to the original read's start and serves two roles:
// it indexes into the caller's buffer, and it is added to the read's
// starting file offset to get the absolute file position for this chunk.
type SubRange struct {
	BufOffset int64
	NBytes    int64
}

// Plan computes the exact chunking rule:
//
//	num_ops = min(max(nbytes/min_parallel_size, 1), pool_size)
//	per_op  = ceil(nbytes/num_ops)
//
// A nil/empty result means nbytes <= 0: read nothing, schedule nothing. A
// single-element result means num_ops == 1: the caller should execute it
// synchronously rather than submitting to the pool.
func Plan(nbytes int64, poolSize int, minParallelSize int64) []SubRange {
	if nbytes <= 0 {
		return nil
	}
	if poolSize < 1 {
		poolSize = 1
	}
	if minParallelSize < 1 {
		minParallelSize = 1
	}

	numOps := nbytes / minParallelSize
	if numOps < 1 {
		numOps = 1
	}
	if numOps > int64(poolSize) {
		numOps = int64(poolSize)
	}
	if numOps == 1 {
		return []SubRange{{BufOffset: 0, NBytes: nbytes}}
	}

	perOp := ceilDiv(nbytes, numOps)
	ranges := make([]SubRange, 0, numOps)
	for i := int64(0); i < numOps; i++ {
		begin := i * perOp
		if begin >= nbytes {
			break
		}
		end := (i+1)*perOp - 1
		if end > nbytes-1 {
			end = nbytes - 1
		}
		ranges = append(ranges, SubRange{BufOffset: begin, NBytes: end - begin + 1})
	}
	return ranges
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// Execute runs one read(uri, offset, buf, nbytes) call: it plans the
// sub-ranges and either runs the single sub-range synchronously on the
// caller's goroutine or fans multiple sub-ranges out to pool, waiting for
// every one to finish even after a peer fails, aggregating failures into one
// ParallelReadError that preserves the first underlying cause.
func Execute(ctx context.Context, pool *threadpool.Pool, adapter backend.Adapter, path string, offset int64, buf []byte, nbytes int64, minParallelSize int64) error {
	ranges := Plan(nbytes, pool.Size(), minParallelSize)
	if len(ranges) == 0 {
		return nil
	}
	if len(ranges) == 1 {
		r := ranges[0]
		_, err := adapter.Read(ctx, path, offset+r.BufOffset, buf[r.BufOffset:r.BufOffset+r.NBytes], int(r.NBytes))
		if err != nil {
			return errors.Wrap("read", path, err)
		}
		return nil
	}

	handles := make([]threadpool.Handle, len(ranges))
	for i, r := range ranges {
		r := r
		handles[i] = pool.Submit(func() error {
			_, err := adapter.Read(ctx, path, offset+r.BufOffset, buf[r.BufOffset:r.BufOffset+r.NBytes], int(r.NBytes))
			return err
		})
	}

	errs := threadpool.Wait(handles)
	var first error
	var combined error
	for _, e := range errs {
		if e == nil {
			continue
		}
		if first == nil {
			first = e
		}
		combined = multierr.Append(combined, e)
	}
	if combined == nil {
		return nil
	}
	return errors.ParallelReadError("read", path, first)
}
