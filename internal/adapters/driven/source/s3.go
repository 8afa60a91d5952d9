package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

// S3Source reads objects addressed as s3://bucket/key.
type S3Source struct {
	client s3iface.S3API
}

// NewS3Source creates a source using the AWS shared config and
// environment credentials. An empty region defers to them too; a
// non-empty endpoint targets an S3 compatible store with path-style keys.
func NewS3Source(region, endpoint string) (*S3Source, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewS3SourceWithClient(s3.New(sess)), nil
}

// NewS3SourceWithClient wraps an existing client.
func NewS3SourceWithClient(client s3iface.S3API) *S3Source {
	return &S3Source{client: client}
}

// Fetch downloads the object.
func (s *S3Source) Fetch(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := ParseS3URL(location)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == s3.ErrCodeNoSuchBucket) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, location)
		}
		return nil, fmt.Errorf("get %s: %w", location, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("get %s: larger than %d bytes", location, maxDownloadBytes)
	}
	logger.Debug("fetched %d bytes from %s", len(data), location)
	return data, nil
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, location, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if !strings.EqualFold(u.Scheme, "s3") || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: expected s3://bucket/key, got %q", domain.ErrInvalidInput, location)
	}
	return u.Host, key, nil
}
