package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound is returned by GetReport when no object has the key.
var ErrNotFound = errors.New("report not found")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Store keeps copies of exported dashboard reports in a bucket, keyed by
// month: reports/2026/10/dashboard-....pdf.
type Store struct {
	bucket string
	client s3Client
	now    func() time.Time
}

// New returns a Store backed by an S3-compatible endpoint (R2, MinIO, S3).
func New(cfg Config) *Store {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &Store{bucket: cfg.Bucket, client: s3.New(opts), now: time.Now}
}

// Key returns the object key a report with the given filename is stored under.
func (s *Store) Key(filename string) string {
	now := s.now().UTC()
	return path.Join("reports", now.Format("2006"), now.Format("01"), filename)
}

// PutReport uploads a PDF report and returns its object key.
func (s *Store) PutReport(ctx context.Context, filename string, data []byte) (string, error) {
	key := s.Key(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("upload report %s: %w", key, err)
	}
	return key, nil
}

// GetReport downloads a previously archived report.
func (s *Store) GetReport(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("download report %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("download report %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", key, err)
	}
	return data, nil
}
