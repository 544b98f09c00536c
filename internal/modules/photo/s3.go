package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// S3Options configures an S3-compatible bucket (AWS, Supabase storage, MinIO).
type S3Options struct {
	Endpoint        string // empty for AWS
	Region          string
	Bucket          string
	PublicBaseURL   string // overrides the derived public URL prefix
	AccessKeyID     string
	SecretAccessKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage stores photos in a bucket behind a circuit breaker so a dead
// endpoint fails each photo fast instead of stalling the submit.
type S3Storage struct {
	client     objectPutter
	bucket     string
	publicBase string
	cb         *gobreaker.CircuitBreaker
}

func NewS3Storage(ctx context.Context, opts S3Options, log *zap.Logger) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for photo storage: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Storage(client, opts, log), nil
}

func newS3Storage(client objectPutter, opts S3Options, log *zap.Logger) *S3Storage {
	if log == nil {
		log = zap.NewNop()
	}
	base := opts.PublicBaseURL
	if base == "" {
		if opts.Endpoint != "" {
			base = fmt.Sprintf("%s/%s", strings.TrimSuffix(opts.Endpoint, "/"), opts.Bucket)
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
		}
	}

	settings := gobreaker.Settings{
		Name:        "photo-storage",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &S3Storage{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: strings.TrimSuffix(base, "/"),
		cb:         gobreaker.NewCircuitBreaker(settings),
	}
}

func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3Storage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// ErrStorageUnavailable is returned by Unavailable for every upload.
var ErrStorageUnavailable = errors.New("photo storage is not configured")

// Unavailable stands in when no bucket is configured: every photo is dropped
// and the contact is still saved.
type Unavailable struct{}

func (Unavailable) Put(context.Context, string, []byte, string) error { return ErrStorageUnavailable }
func (Unavailable) PublicURL(string) string                          { return "" }
