package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/edtke/archivecheck/internal/common"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3GetObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// s3GetObjectAPI is the slice of the S3 client the fetcher uses.
type s3GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configures the bucket mirror of the bag store.
type S3Options struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Fetcher fetches documents from an S3-compatible mirror of the bag store.
// Refs are object keys within the configured bucket.
type S3Fetcher struct {
	client s3GetObjectAPI
	bucket string
}

// NewS3Fetcher builds a fetcher against the configured bucket.
func NewS3Fetcher(ctx context.Context, opts S3Options) (*S3Fetcher, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.User, opts.Password, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Fetcher{client: client, bucket: opts.Bucket}, nil
}

// Fetch downloads the object at key. A missing key maps to common.ErrNotFound.
func (f *S3Fetcher) Fetch(ctx context.Context, key string) (string, error) {
	// Callers may pass URL-style refs; object keys have no leading slash.
	key = strings.TrimPrefix(key, "/")
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", fmt.Errorf("s3 object %s: %w", key, common.ErrNotFound)
		}
		return "", fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read s3 object %s: %w", key, err)
	}
	return string(body), nil
}
