package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client used by S3Store.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures NewS3Client.
type S3Config struct {
	Region string

	// Endpoint overrides the service endpoint (MinIO, R2, localstack).
	Endpoint string

	// PathStyle addresses buckets as endpoint/bucket instead of a subdomain.
	PathStyle bool

	// AccessKeyID and SecretAccessKey are static credentials. When empty
	// the client signs anonymously.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			SessionToken:    cfg.SessionToken,
			Source:          "vgv",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return creds, nil
			},
		))
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(opts)
}

// S3Store stores artifacts in an S3 bucket.
type S3Store struct {
	client  PutObjectAPI
	bucket  string
	prefix  string
	maxSize int64
	now     func() time.Time
}

// S3Option configures an S3Store.
type S3Option func(*S3Store)

// WithPrefix sets the key prefix (e.g., "renders/").
func WithPrefix(prefix string) S3Option {
	return func(s *S3Store) {
		s.prefix = prefix
	}
}

// WithMaxSize sets the maximum object size in bytes (0 = no limit).
func WithMaxSize(n int64) S3Option {
	return func(s *S3Store) {
		s.maxSize = n
	}
}

// NewS3Store creates a new S3 store.
//
// Example usage:
//
//	client := upload.NewS3Client(upload.S3Config{Region: "us-east-1"})
//	store := upload.NewS3Store(client, "my-bucket", upload.WithPrefix("vgv/"))
func NewS3Store(client PutObjectAPI, bucket string, opts ...S3Option) *S3Store {
	s := &S3Store{
		client: client,
		bucket: bucket,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put uploads r to bucket/prefix+key and returns its s3:// location.
func (s *S3Store) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	key = s.prefix + key

	// PutObject needs a seekable body to sign the payload.
	var buf bytes.Buffer
	if _, err := limit(&buf, r, s.maxSize); err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String(contentType),
		Metadata: map[string]string{
			"generator":   "vgv",
			"upload-time": s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload: s3 put %s: %w", key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
