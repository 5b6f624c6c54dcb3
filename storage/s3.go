package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// S3Config locates a bucket mirror of blobs.
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string

	// AccessKey and SecretKey are optional. Without them requests are
	// anonymous and the bucket must be publicly readable.
	AccessKey string
	SecretKey string

	// PathStyle addresses the bucket in the path, needed by most
	// S3-compatible servers.
	PathStyle bool
}

// S3Source serves blobs from Amazon S3 or a compatible object store. Objects
// are stored under prefix/blobID.
type S3Source struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewS3Source creates a read-only S3 source.
func NewS3Source(cfg S3Config, log *slog.Logger) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: missing S3 bucket name", interfaces.ErrInvalidLocationURI)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	uri := fmt.Sprintf("s3://%s/%s?region=%s", cfg.Bucket, cfg.Prefix, cfg.Region)
	if cfg.Endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", cfg.Endpoint)
	}

	awsCfg := aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.PathStyle),
		// Retries are driven by the caller's retry policy.
		MaxRetries: aws.Int(0),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		awsCfg.Credentials = credentials.AnonymousCredentials
	}

	sess, err := session.NewSession(&awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Source{
		client:      s3.New(sess),
		bucketName:  cfg.Bucket,
		prefix:      strings.Trim(cfg.Prefix, "/"),
		log:         log,
		locationURI: uri,
	}, nil
}

// Fetch retrieves the blob object, forwarding the byte range to S3.
func (b *S3Source) Fetch(ctx context.Context, req interfaces.BlobRequest) (*interfaces.BlobResponse, error) {
	start := time.Now()
	key := b.objectKey(req.BlobID)

	input := &s3.GetObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	}
	if rangeHeader := req.Range.RequestHeader(); rangeHeader != "" {
		input.Range = aws.String(rangeHeader)
	}

	result, err := b.client.GetObjectWithContext(ctx, input)
	if err != nil {
		return nil, b.classify(req.BlobID, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading S3 object %s: %w", interfaces.ErrUpstreamUnavailable, key, err)
	}

	b.log.Debug("Fetched blob from S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return &interfaces.BlobResponse{
		Data:        data,
		ContentType: aws.StringValue(result.ContentType),
	}, nil
}

func (b *S3Source) classify(blobID, key string, err error) error {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.StatusCode() == http.StatusNotFound:
			return fmt.Errorf("%w: blob %s", interfaces.ErrNotFound, blobID)
		case reqErr.StatusCode() >= http.StatusInternalServerError:
			return fmt.Errorf("%w: S3 object %s: %w", ErrServerError, key, err)
		case reqErr.StatusCode() >= http.StatusBadRequest:
			return fmt.Errorf("%w: S3 object %s: %w", ErrClientError, key, err)
		}
	}

	var awsErr awserr.Error
	if errors.As(err, &awsErr) && awsErr.Code() == s3.ErrCodeNoSuchKey {
		return fmt.Errorf("%w: blob %s", interfaces.ErrNotFound, blobID)
	}

	b.log.Error("Failed to get object from S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		"err", err)
	return fmt.Errorf("%w: S3 object %s: %w", interfaces.ErrUpstreamUnavailable, key, err)
}

func (b *S3Source) Name() string {
	return fmt.Sprintf("s3-%s", b.bucketName)
}

func (b *S3Source) LocationURI() string {
	return b.locationURI
}

func (b *S3Source) objectKey(blobID string) string {
	if b.prefix == "" {
		return blobID
	}
	return path.Join(b.prefix, blobID)
}
