// Package storage archives generated documents to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"fleet-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archive stores a document under key and returns its object key.
type Archive interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// objectPutter is the subset of *s3.Client the archive needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes objects into one bucket under a key prefix.
type S3Archive struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Archive builds an archive from the storage section of cfg. It returns
// nil, nil when storage is disabled.
func NewS3Archive(ctx context.Context, cfg *config.Config) (*S3Archive, error) {
	sc := cfg.Storage
	if !sc.Enabled {
		return nil, nil
	}
	if sc.Bucket == "" {
		return nil, fmt.Errorf("storage enabled but no bucket configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(sc.Region)}
	if sc.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.AccessKey, sc.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure s3 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Archive(client, sc.Bucket, sc.Prefix), nil
}

func newS3Archive(client objectPutter, bucket, prefix string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (a *S3Archive) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	objectKey := key
	if a.prefix != "" {
		objectKey = path.Join(a.prefix, key)
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}
	return objectKey, nil
}
