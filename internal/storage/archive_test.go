package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"fleet-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3ArchivePut(t *testing.T) {
	fake := &fakePutter{}
	a := newS3Archive(fake, "fleet-docs", "/receipts/")

	key, err := a.Put(context.Background(), "payments/ESSA1001.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "receipts/payments/ESSA1001.pdf", key)
	assert.Equal(t, "fleet-docs", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(fake.input.ContentType))
	assert.Equal(t, []byte("%PDF"), fake.body)
}

func TestS3ArchivePutError(t *testing.T) {
	a := newS3Archive(&fakePutter{err: errors.New("denied")}, "b", "")
	_, err := a.Put(context.Background(), "x.pdf", "application/pdf", nil)
	assert.ErrorContains(t, err, "denied")
}

func TestNewS3ArchiveDisabled(t *testing.T) {
	a, err := NewS3Archive(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, a)
}
