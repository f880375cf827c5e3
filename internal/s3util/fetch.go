// Package s3util provides the S3 helpers used by the incident API: fetching
// uploaded videos to local temp files, presigning browser uploads and
// archiving processed reports.
package s3util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"
)

// NotFoundError means the requested object does not exist.
type NotFoundError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("s3://%s/%s not found", e.Bucket, e.Key)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// TransferError means the object exists (or may exist) but could not be
// read or written locally.
type TransferError struct {
	Bucket string
	Key    string
	Op     string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("s3 %s s3://%s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ObjectGetter is the subset of *s3.Client used by Fetcher.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher downloads objects from one bucket to temporary local files.
type Fetcher struct {
	client ObjectGetter
	bucket string
	tmpDir string
}

// NewFetcher returns a Fetcher for bucket. Files are created in the
// default temp directory (/tmp in Lambda).
func NewFetcher(client ObjectGetter, bucket string) *Fetcher {
	return &Fetcher{client: client, bucket: bucket}
}

// Fetch downloads key to a new temporary file and returns its path plus a
// cleanup function that removes it. The cleanup must be called on every
// path once the file is no longer needed.
func (f *Fetcher) Fetch(ctx context.Context, key string) (string, func(), error) {
	log.Debug().Str("bucket", f.bucket).Str("key", key).Msg("Downloading from S3")

	result, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &f.bucket,
		Key:    &key,
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil, &NotFoundError{Bucket: f.bucket, Key: key, Err: err}
		}
		return "", nil, &TransferError{Bucket: f.bucket, Key: key, Op: "GetObject", Err: err}
	}
	defer result.Body.Close()

	tmpFile, err := os.CreateTemp(f.tmpDir, "incident-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, &TransferError{Bucket: f.bucket, Key: key, Op: "create temp file", Err: err}
	}
	path := tmpFile.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove temp video")
		}
	}

	n, err := io.Copy(tmpFile, result.Body)
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, &TransferError{Bucket: f.bucket, Key: key, Op: "download", Err: err}
	}

	log.Debug().Str("key", key).Str("path", path).Int64("bytes", n).Msg("Downloaded video to temp file")
	return path, cleanup, nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
