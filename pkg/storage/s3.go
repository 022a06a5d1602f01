package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// URLExpiry bounds how long a minted upload or download URL stays valid.
// Enforcement is entirely on the object store side.
const URLExpiry = 10 * time.Minute

// Presigner mints scoped, time-limited URLs for a specific object key.
// The binary bytes never pass through this service; only URLs do.
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key, fileName, disposition string) (string, error)
}

// Config holds the object storage settings, all sourced from environment
type Config struct {
	Region          string `envconfig:"AWS_REGION" required:"true"`
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID" required:"true"`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY" required:"true"`
	Bucket          string `envconfig:"AWS_S3_BUCKET_NAME" required:"true"`
}

// S3Storage implements Presigner against an S3 bucket
type S3Storage struct {
	presign *s3.PresignClient
	bucket  string
}

// NewS3Storage builds the S3 client once at startup; the client is
// read-only afterwards and safe for concurrent use.
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (s *S3Storage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3Storage) PresignDownload(ctx context.Context, key, fileName, disposition string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	// Forcing a save-as needs an octet-stream content type; inline leaves
	// the stored content type alone so the browser can render it.
	if disposition == "attachment" {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", fileName))
		input.ResponseContentType = aws.String("application/octet-stream")
	} else {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("inline; filename=%q", fileName))
	}

	req, err := s.presign.PresignGetObject(ctx, input, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", key, err)
	}
	return req.URL, nil
}
