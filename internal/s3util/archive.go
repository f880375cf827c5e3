package s3util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// projectTag is the URL-encoded S3 object tagging string for cost allocation.
const projectTag = "Project=incident-dispatch"

// ProjectTagging returns a pointer to the URL-encoded S3 object tagging string.
func ProjectTagging() *string {
	t := projectTag
	return &t
}

// ObjectPutter is the subset of *s3.Client used for archiving.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveKey returns the archive key for a report produced from videoKey
// at t: <prefix><yyyy/mm/dd>/<video base name>-<unix millis>.json.zst
func ArchiveKey(prefix, videoKey string, t time.Time) string {
	name := strings.TrimPrefix(UploadKey(videoKey), UploadPrefix)
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%s%s/%s-%d.json.zst", prefix, t.UTC().Format("2006/01/02"), name, t.UnixMilli())
}

// ArchiveReport writes v as zstd-compressed JSON to bucket/key.
func ArchiveReport(ctx context.Context, client ObjectPutter, bucket, key string, v any) error {
	data, err := compressJSON(v)
	if err != nil {
		return err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          &bucket,
		Key:             &key,
		Body:            bytes.NewReader(data),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("zstd"),
		Tagging:         ProjectTagging(),
	})
	if err != nil {
		return &TransferError{Bucket: bucket, Key: key, Op: "PutObject", Err: err}
	}

	log.Info().Str("key", key).Int("compressed_bytes", len(data)).Msg("Report archived to S3")
	return nil
}

func compressJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(v); err != nil {
		enc.Close()
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("zstd close: %w", err)
	}
	return buf.Bytes(), nil
}
