// Package publish uploads built graph snapshots to object storage.
package publish

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"

	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const defaultCacheControl = "public, max-age=300"

// S3API is the subset of the S3 client used by Publisher. *s3.Client satisfies it.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher writes snapshots to an S3 bucket under an optional key prefix
type Publisher struct {
	client       S3API
	bucket       string
	prefix       string
	cacheControl string
	logger       *zap.Logger
}

// NewPublisher creates an S3 snapshot publisher
func NewPublisher(client S3API, bucket, prefix string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client:       client,
		bucket:       bucket,
		prefix:       strings.Trim(prefix, "/"),
		cacheControl: defaultCacheControl,
		logger:       logger,
	}
}

// Key returns the object key a snapshot name is stored under
func (p *Publisher) Key(name string) string {
	name = strings.TrimLeft(name, "/")
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Publish uploads body and returns the s3:// location it was written to
func (p *Publisher) Publish(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	if p.bucket == "" {
		return "", pkgerrors.NewValidationError("publish bucket is not configured")
	}
	if strings.Trim(name, "/") == "" {
		return "", pkgerrors.NewValidationError("snapshot key cannot be empty")
	}

	key := p.Key(name)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(p.cacheControl),
	})
	if err != nil {
		appErr := pkgerrors.NewExternalError("s3", err).
			WithDetail("bucket", p.bucket).
			WithDetail("key", key)
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			appErr = appErr.WithCode(apiErr.ErrorCode())
		}
		return "", appErr
	}

	location := "s3://" + p.bucket + "/" + key
	p.logger.Info("Published snapshot",
		zap.String("location", location),
		zap.Int("bytes", len(body)),
	)
	return location, nil
}
