package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config describes where tiles are read from and uploaded to
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Dir       string
}

// Client is the subset of the S3 API the uploader needs
type Client interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader pushes a tile directory to a bucket
type Uploader struct {
	client Client
	logger *log.Logger
}

// NewUploader wraps an existing client. A nil logger uses the standard logger.
func NewUploader(client Client, logger *log.Logger) *Uploader {
	if logger == nil {
		logger = log.Default()
	}
	return &Uploader{client: client, logger: logger}
}

// NewClient builds an S3 client for cfg. A non-empty Endpoint selects an
// S3-compatible server (MinIO and friends) with path-style addressing.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// TileFiles lists the PNG files in dir sorted by name
func TileFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}

// ObjectKey joins prefix and name with forward slashes
func ObjectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(strings.Trim(prefix, "/"), name)
}

// UploadTiles makes sure the bucket exists and uploads every tile in
// cfg.Dir. Failed files do not stop the rest; their errors are joined.
func (u *Uploader) UploadTiles(ctx context.Context, cfg Config) (int, error) {
	if cfg.Bucket == "" {
		return 0, errors.New("bucket is required")
	}

	names, err := TileFiles(cfg.Dir)
	if err != nil {
		return 0, err
	}

	if _, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		if _, err := u.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(cfg.Bucket),
		}); err != nil {
			return 0, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		u.logger.Printf("Created bucket: %s", cfg.Bucket)
	}

	uploaded := 0
	var errs []error
	for _, name := range names {
		if err := u.uploadFile(ctx, cfg, name); err != nil {
			u.logger.Printf("failed to upload %s: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		u.logger.Printf("uploaded: %s", name)
		uploaded++
	}

	return uploaded, errors.Join(errs...)
}

func (u *Uploader) uploadFile(ctx context.Context, cfg Config, name string) error {
	file, err := os.Open(filepath.Join(cfg.Dir, name))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(cfg.Bucket),
		Key:         aws.String(ObjectKey(cfg.Prefix, name)),
		Body:        file,
		ContentType: aws.String("image/png"),
	})
	return err
}
