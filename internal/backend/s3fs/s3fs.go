// Package s3fs implements the S3-compatible backend adapter: client
// construction and error translation follow the usual aws-sdk-go-v2 shape,
// and writes accumulate in memory per open path and flush on close through
// CargoShip, falling back to a plain PutObject. Compiled only when the nos3
// build tag is absent; see ../../capability's s3_on.go/s3_off.go.
package s3fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	cargoshipconfig "github.com/scttfrdmn/cargoship/pkg/aws/config"
	cargoships3 "github.com/scttfrdmn/cargoship/pkg/aws/s3"

	"github.com/arrayvfs/vfs/internal/backend"
	vfsconfig "github.com/arrayvfs/vfs/pkg/config"
	vfserrors "github.com/arrayvfs/vfs/pkg/errors"
)

// dirMarkerSuffix is the key separator that turns a directory path into a
// listing prefix. Keys ending in it are the zero-byte directory markers other
// S3-backed filesystems (rclone among them) write; this adapter never writes
// such markers itself and skips them in Ls.
const dirMarkerSuffix = "/"

// Adapter is the S3 backend. A single Adapter serves every bucket named in
// VFS paths (s3://bucket/key...); the bucket segment is parsed out of each
// path rather than fixed at construction, since one VFS may address several
// buckets.
type Adapter struct {
	client *s3.Client
	cfg    vfsconfig.S3Params
	logger *slog.Logger

	mu      sync.Mutex
	writers map[string]*bytes.Buffer
}

// Connect loads AWS credentials/region per params and returns a ready
// Adapter. LifecycleController wraps this in retry + circuit breaker.
func Connect(ctx context.Context, params vfsconfig.S3Params) (*Adapter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(params.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if params.EndpointOverride != "" {
			o.BaseEndpoint = aws.String(params.EndpointOverride)
		}
		o.UsePathStyle = !params.UseVirtualAddressing
	})

	a := &Adapter{
		client:  client,
		cfg:     params,
		logger:  slog.Default().With("component", "s3fs"),
		writers: make(map[string]*bytes.Buffer),
	}
	if err := a.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("S3 health check failed: %w", err)
	}
	return a, nil
}

func splitPath(path string) (bucket, key string) {
	trimmed := strings.TrimPrefix(path, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		key = parts[1]
	}
	return bucket, key
}

// CreateDir is a no-op on S3: object stores have no directories, and it
// must leave no observable state change. Directories are emulated lazily by
// Ls/IsDir from object key prefixes, never materialized by create_dir itself.
func (a *Adapter) CreateDir(_ context.Context, _ string) error {
	return nil
}

// Touch is a no-op if the object already exists (S3 has no mtime to bump
// the way POSIX touch(1) does); otherwise it creates an empty object.
func (a *Adapter) Touch(ctx context.Context, path string) error {
	bucket, key := splitPath(path)
	if _, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err == nil {
		return nil
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(nil),
		ContentType: aws.String(detectContentType(key)),
	})
	if err != nil {
		return a.translateError(err, "touch", path)
	}
	return nil
}

func (a *Adapter) RemoveDir(ctx context.Context, path string) error {
	bucket, key := splitPath(path)
	prefix := key
	if prefix != "" && !strings.HasSuffix(prefix, dirMarkerSuffix) {
		prefix += dirMarkerSuffix
	}

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return a.translateError(err, "remove_dir", path)
		}
		for _, obj := range page.Contents {
			if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(bucket),
				Key:    obj.Key,
			}); err != nil {
				return a.translateError(err, "remove_dir", path)
			}
		}
	}
	return nil
}

func (a *Adapter) RemoveFile(ctx context.Context, path string) error {
	bucket, key := splitPath(path)
	if ok, _ := a.IsFile(ctx, path); !ok {
		return vfserrors.NotFound("remove_file", path)
	}
	if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return a.translateError(err, "remove_file", path)
	}
	return nil
}

func (a *Adapter) Ls(ctx context.Context, path string) ([]backend.Entry, error) {
	bucket, key := splitPath(path)
	prefix := key
	if prefix != "" && !strings.HasSuffix(prefix, dirMarkerSuffix) {
		prefix += dirMarkerSuffix
	}

	var out []backend.Entry
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, a.translateError(err, "ls", path)
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name == "" {
				continue
			}
			out = append(out, backend.Entry{Name: name, IsDir: true})
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" || strings.HasSuffix(name, dirMarkerSuffix) {
				continue
			}
			out = append(out, backend.Entry{Name: name, IsDir: false})
		}
	}
	return out, nil
}

func (a *Adapter) FileSize(ctx context.Context, path string) (uint64, error) {
	bucket, key := splitPath(path)
	result, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isErrorType[*s3types.NotFound](err) {
			return 0, vfserrors.NotFound("file_size", path)
		}
		return 0, a.translateError(err, "file_size", path)
	}
	return uint64(aws.ToInt64(result.ContentLength)), nil
}

func (a *Adapter) IsDir(ctx context.Context, path string) (bool, error) {
	bucket, key := splitPath(path)
	if key == "" {
		_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
		return err == nil, nil
	}
	prefix := key
	if !strings.HasSuffix(prefix, dirMarkerSuffix) {
		prefix += dirMarkerSuffix
	}
	page, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, nil
	}
	return len(page.Contents) > 0, nil
}

func (a *Adapter) IsFile(ctx context.Context, path string) (bool, error) {
	bucket, key := splitPath(path)
	if key == "" || strings.HasSuffix(key, dirMarkerSuffix) {
		return false, nil
	}
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err == nil, nil
}

// Move performs a copy-then-delete rename. isDir fans the rename out over
// every object under the old prefix; a plain file rename is a single
// object copy. S3 needs the isDir flag to tell the two cases apart, unlike
// POSIX/HDFS where a single rename syscall covers both.
func (a *Adapter) Move(ctx context.Context, oldPath, newPath string, isDir bool) error {
	oldBucket, oldKey := splitPath(oldPath)
	newBucket, newKey := splitPath(newPath)

	if !isDir {
		if err := a.copyObject(ctx, oldBucket, oldKey, newBucket, newKey); err != nil {
			return a.translateError(err, "move", oldPath)
		}
		_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(oldBucket), Key: aws.String(oldKey)})
		if err != nil {
			return a.translateError(err, "move", oldPath)
		}
		return nil
	}

	prefix := oldKey
	if prefix != "" && !strings.HasSuffix(prefix, dirMarkerSuffix) {
		prefix += dirMarkerSuffix
	}
	newPrefix := newKey
	if newPrefix != "" && !strings.HasSuffix(newPrefix, dirMarkerSuffix) {
		newPrefix += dirMarkerSuffix
	}

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(oldBucket),
		Prefix: aws.String(prefix),
	})
	var movedKeys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return a.translateError(err, "move_dir", oldPath)
		}
		for _, obj := range page.Contents {
			srcKey := aws.ToString(obj.Key)
			dstKey := newPrefix + strings.TrimPrefix(srcKey, prefix)
			if err := a.copyObject(ctx, oldBucket, srcKey, newBucket, dstKey); err != nil {
				return a.translateError(err, "move_dir", oldPath)
			}
			movedKeys = append(movedKeys, srcKey)
		}
	}
	for _, srcKey := range movedKeys {
		if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(oldBucket), Key: aws.String(srcKey)}); err != nil {
			return a.translateError(err, "move_dir", oldPath)
		}
	}
	return nil
}

func (a *Adapter) copyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	source := fmt.Sprintf("%s/%s", srcBucket, srcKey)
	_, err := a.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(source),
	})
	return err
}

// Open records intent; S3 has no real file handle. ModeRead is a no-op
// (Read issues a fresh ranged GetObject each call); ModeWrite opens an
// in-memory write buffer flushed on Close; ModeAppend is not supported
// because S3 objects cannot be appended to in place.
func (a *Adapter) Open(_ context.Context, path string, mode backend.Mode) error {
	switch mode {
	case backend.ModeRead:
		return nil
	case backend.ModeWrite:
		a.mu.Lock()
		a.writers[path] = new(bytes.Buffer)
		a.mu.Unlock()
		return nil
	case backend.ModeAppend:
		return vfserrors.AppendUnsupported("open_file", path)
	}
	return nil
}

func (a *Adapter) Close(ctx context.Context, path string) error {
	a.mu.Lock()
	buf, ok := a.writers[path]
	delete(a.writers, path)
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return a.flush(ctx, path, buf.Bytes())
}

// flush uploads the accumulated buffer, preferring CargoShip's optimized
// multipart transport for larger payloads and falling back to a plain
// PutObject for everything else or on transporter failure.
func (a *Adapter) flush(ctx context.Context, path string, data []byte) error {
	bucket, key := splitPath(path)

	if len(data) >= int(a.cfg.FileBufferSize) && a.cfg.FileBufferSize > 0 {
		transporter := cargoships3.NewTransporter(a.client, cargoshipconfig.S3Config{
			Bucket:             bucket,
			StorageClass:       cargoshipconfig.StorageClassStandard,
			MultipartThreshold: a.cfg.FileBufferSize,
			MultipartChunkSize: a.cfg.FileBufferSize / 4,
			Concurrency:        4,
		})
		archive := cargoships3.Archive{
			Key:          key,
			Reader:       bytes.NewReader(data),
			Size:         int64(len(data)),
			StorageClass: cargoshipconfig.StorageClassStandard,
		}
		if _, err := transporter.Upload(ctx, archive); err == nil {
			return nil
		}
		a.logger.Warn("cargoship upload failed, falling back to PutObject", "path", path)
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(detectContentType(key)),
	})
	if err != nil {
		return a.translateError(err, "write", path)
	}
	return nil
}

// Read issues a ranged GetObject for [offset, offset+n). This is what the
// ParallelReadPlanner fans its sub-ranges out across.
func (a *Adapter) Read(ctx context.Context, path string, offset int64, buf []byte, n int) (int, error) {
	bucket, key := splitPath(path)
	rangeHeader := fmt.Sprintf("bytes=%d-%d", offset, offset+int64(n)-1)

	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		if isErrorType[*s3types.NoSuchKey](err) {
			return 0, vfserrors.NotFound("read", path)
		}
		return 0, a.translateError(err, "read", path)
	}
	defer result.Body.Close()

	read := 0
	for read < n {
		m, err := result.Body.Read(buf[read:n])
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
	wb, ok := a.writers[path]
	a.mu.Unlock()
	if !ok {
		return 0, vfserrors.New(vfserrors.KindInvalidArgument, "write", path, "file is not open for writing")
	}
	return wb.Write(buf[:n])
}

// Sync is a no-op; S3 objects only become visible on Close, once the
// buffered write is flushed.
func (a *Adapter) Sync(_ context.Context, _ string) error {
	return nil
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	_, err := a.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	return err
}

func (a *Adapter) Shutdown() error {
	return nil
}

func (a *Adapter) CreateBucket(ctx context.Context, bucket string) error {
	_, err := a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return a.translateError(err, "create_bucket", bucket)
	}
	return nil
}

func (a *Adapter) RemoveBucket(ctx context.Context, bucket string) error {
	_, err := a.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return a.translateError(err, "remove_bucket", bucket)
	}
	return nil
}

func (a *Adapter) EmptyBucket(ctx context.Context, bucket string) error {
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return a.translateError(err, "empty_bucket", bucket)
		}
		for _, obj := range page.Contents {
			if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: obj.Key}); err != nil {
				return a.translateError(err, "empty_bucket", bucket)
			}
		}
	}
	return nil
}

func (a *Adapter) IsEmptyBucket(ctx context.Context, bucket string) (bool, error) {
	page, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: aws.String(bucket), MaxKeys: aws.Int32(1)})
	if err != nil {
		return false, a.translateError(err, "is_empty_bucket", bucket)
	}
	return len(page.Contents) == 0, nil
}

func (a *Adapter) IsBucket(ctx context.Context, bucket string) (bool, error) {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	return err == nil, nil
}

func (a *Adapter) translateError(err error, op, path string) error {
	switch {
	case isErrorType[*s3types.NoSuchKey](err):
		return vfserrors.NotFound(op, path)
	case isErrorType[*s3types.NotFound](err):
		return vfserrors.NotFound(op, path)
	case isErrorType[*s3types.NoSuchBucket](err):
		return vfserrors.NotFound(op, path)
	default:
		return vfserrors.Wrap(op, path, err)
	}
}

func isErrorType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func detectContentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".txt"):
		return "text/plain"
	case strings.HasSuffix(key, ".html"):
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
