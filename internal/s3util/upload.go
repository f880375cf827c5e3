package s3util

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadPrefix is the key prefix for browser-uploaded incident videos.
const UploadPrefix = "videos/"

// UploadURLExpiry is how long a presigned upload URL stays valid.
const UploadURLExpiry = time.Hour

// PutPresigner is the subset of *s3.PresignClient used for uploads.
type PutPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadKey returns the object key for an uploaded file name. Directory
// components are dropped and characters outside [A-Za-z0-9._-] are
// replaced with underscores.
func UploadKey(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "upload"
	}
	return UploadPrefix + base
}

// PresignUpload returns a presigned PUT URL for key. The browser must send
// the same Content-Type header when uploading.
func PresignUpload(ctx context.Context, presigner PutPresigner, bucket, key, contentType string, expiry time.Duration) (string, error) {
	result, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign PutObject: %w", err)
	}
	return result.URL, nil
}
