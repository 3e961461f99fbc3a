package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/internal/logger"
)

const s3KeyPrefix = "recipe-images/"

// S3API is the part of the S3 client the image provider uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Images stores images in an S3 bucket
type S3Images struct {
	client     S3API
	bucket     string
	urlPrefix  string
	keyPattern *regexp.Regexp
	logger     *zap.Logger
}

// S3Option configures an S3Images provider
type S3Option func(*S3Images)

// WithS3Endpoint issues path-style URLs under a custom endpoint, matching
// the addressing the client uses for S3-compatible stores.
func WithS3Endpoint(endpoint string) S3Option {
	return func(s *S3Images) {
		if endpoint = strings.TrimRight(endpoint, "/"); endpoint != "" {
			s.urlPrefix = endpoint + "/" + s.bucket + "/"
		}
	}
}

// NewS3Images creates a provider over bucket
func NewS3Images(client S3API, bucket string, log *zap.Logger, opts ...S3Option) *S3Images {
	s := &S3Images{
		client:    client,
		bucket:    bucket,
		urlPrefix: fmt.Sprintf("https://%s.s3.amazonaws.com/", bucket),
		logger:    logger.OrNop(log).Named("s3"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.keyPattern = regexp.MustCompile("^" + regexp.QuoteMeta(s.urlPrefix) + "(" + regexp.QuoteMeta(s3KeyPrefix) + "[^?#]+)")
	return s
}

func (s *S3Images) Name() string { return "S3" }

// Upload stores the body under a fresh key and returns its public URL
func (s *S3Images) Upload(ctx context.Context, filename, contentType string, body io.Reader) (*UploadedImage, error) {
	id := uuid.New().String()
	key := s3KeyPrefix + id + strings.ToLower(path.Ext(filename))

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, newUploadError(err.Error())
	}

	url := s.urlPrefix + key
	s.logger.Info("image uploaded", zap.String("key", key))
	return &UploadedImage{ID: id, Filename: filename, URL: url}, nil
}

// Delete removes the object behind a URL this provider issued
func (s *S3Images) Delete(ctx context.Context, url string) error {
	m := s.keyPattern.FindStringSubmatch(url)
	if m == nil {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(m[1]),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", m[1], err)
	}
	return nil
}

// Check verifies the bucket is reachable. S3 has no cheap object count.
func (s *S3Images) Check(ctx context.Context) (int, error) {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return 0, fmt.Errorf("failed to reach bucket %s: %w", s.bucket, err)
	}
	return 0, nil
}
