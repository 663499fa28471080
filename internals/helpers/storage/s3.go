package storage

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"admissions_backend/internals/configs"
)

// Store is the object storage used for uploaded documents and generated PDFs.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

type S3Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

var (
	defaultStore *S3Store
	defaultErr   error
	initOnce     sync.Once
)

// Default builds the S3 store from env once and reuses it.
func Default() (*S3Store, error) {
	initOnce.Do(func() {
		defaultStore, defaultErr = NewS3FromEnv(context.Background())
	})
	return defaultStore, defaultErr
}

// NewS3FromEnv reads S3_* variables. S3_ENDPOINT switches to path-style
// addressing for S3 compatible providers (R2, MinIO).
func NewS3FromEnv(ctx context.Context) (*S3Store, error) {
	bucket := configs.GetEnv("S3_BUCKET")
	region := configs.GetEnv("S3_REGION", "auto")
	endpoint := configs.GetEnv("S3_ENDPOINT")
	publicBase := strings.TrimRight(configs.GetEnv("S3_PUBLIC_URL"), "/")
	if bucket == "" || publicBase == "" {
		return nil, errors.New("S3_BUCKET and S3_PUBLIC_URL must be set")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			configs.GetEnv("S3_ACCESS_KEY_ID"),
			configs.GetEnv("S3_SECRET_ACCESS_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "load s3 config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: bucket, publicBase: publicBase}, nil
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", errors.Wrapf(err, "put object %s", key)
	}
	return s.URL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrapf(err, "delete object %s", key)
}

func (s *S3Store) URL(key string) string {
	return s.publicBase + "/" + (&url.URL{Path: key}).EscapedPath()
}
