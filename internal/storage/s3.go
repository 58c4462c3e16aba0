package storage

import (
	"context"
	"io"
	"path"

	"gradebook-extract/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Publisher uploads published reports to a bucket, optionally under
// a key prefix.
type S3Publisher struct {
	client *s3.S3
	bucket string
	prefix string
}

func NewS3Publisher(cfg *config.Config) (*S3Publisher, error) {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.Storage.S3.AccessKey, cfg.Storage.S3.SecretKey, ""),
		Endpoint:         aws.String(cfg.Storage.S3.Endpoint),
		Region:           aws.String(cfg.Storage.S3.Region),
		DisableSSL:       aws.Bool(!cfg.Storage.S3.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, err
	}

	return &S3Publisher{
		client: s3.New(sess),
		bucket: cfg.Storage.S3.Bucket,
		prefix: cfg.Storage.S3.KeyPrefix,
	}, nil
}

func (s *S3Publisher) Upload(ctx context.Context, key string, data io.Reader) error {
	if s.prefix != "" {
		key = path.Join(s.prefix, key)
	}
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   aws.ReadSeekCloser(data),
	})
	return err
}
