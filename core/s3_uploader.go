package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher delivers a finished PDF somewhere beyond the output directory.
type Publisher interface {
	// Publish uploads the file and returns its location.
	Publish(ctx context.Context, localPath string) (string, error)
}

// S3PutObjectAPI is the part of the S3 client the uploader needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader publishes files to an S3 bucket under a key prefix.
type S3Uploader struct {
	Client S3PutObjectAPI
	Bucket string
	Prefix string

	logger *slog.Logger
}

// NewS3Uploader creates a new uploader.
func NewS3Uploader(logger *slog.Logger, cfg aws.Config, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Prefix: prefix,
		logger: logger,
	}
}

// objectKey joins the prefix and the file's base name with forward slashes.
func (u *S3Uploader) objectKey(localPath string) string {
	key := path.Join(filepath.ToSlash(u.Prefix), filepath.Base(localPath))
	return strings.TrimPrefix(key, "/")
}

func (u *S3Uploader) Publish(ctx context.Context, localPath string) (string, error) {
	key := u.objectKey(localPath)
	if err := u.UploadFile(ctx, localPath, key); err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", u.Bucket, key), nil
}

// UploadFile uploads a single file to S3.
func (u *S3Uploader) UploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	u.logger.Info("Uploading to S3", "local", localPath, "bucket", u.Bucket, "key", key)

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3: %w", err)
	}
	return nil
}
