package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config describes an S3-compatible endpoint (AWS or MinIO).
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

type S3Archiver struct {
	client putObjectAPI
	bucket string
	now    func() time.Time
	newID  func() string
}

// NewS3Archiver builds a client from static credentials when they are
// given, otherwise from the default AWS credential chain.
func NewS3Archiver(ctx context.Context, c S3Config) (*S3Archiver, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
			// MinIO serves buckets under the path, not a subdomain
			o.UsePathStyle = true
		}
	})

	return newS3Archiver(client, c.Bucket), nil
}

func newS3Archiver(client putObjectAPI, bucket string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// objectKey lays uploads out by UTC day: uploads/2025/03/04/<uuid>.csv.
func (a *S3Archiver) objectKey() string {
	d := a.now().UTC()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s.csv", d.Year(), d.Month(), d.Day(), a.newID())
}

func (a *S3Archiver) Archive(ctx context.Context, fileName string, data []byte) (string, error) {
	key := a.objectKey()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("text/csv"),
		Metadata:      map[string]string{"original-filename": fileName},
	})
	if err != nil {
		return "", fmt.Errorf("error archiving upload: %w", err)
	}
	return key, nil
}
