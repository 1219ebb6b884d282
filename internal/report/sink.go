package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"breachsim/internal/logging"
)

// DefaultResultsDir is where FileSink writes when Dir is empty
const DefaultResultsDir = "results"

// FileSink writes documents into a local directory
type FileSink struct {
	Dir string
}

// Put writes data to Dir/key, creating Dir if needed
func (s FileSink) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := s.Dir
	if dir == "" {
		dir = DefaultResultsDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	file := filepath.Join(dir, key)
	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save report %s: %w", file, err)
	}
	return file, nil
}

// S3PutObjectAPI is the S3 call S3Sink needs
type S3PutObjectAPI interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

// S3Sink uploads documents to Bucket under Prefix
type S3Sink struct {
	Client S3PutObjectAPI
	Bucket string
	Prefix string
}

// NewS3Sink creates an S3 sink
func NewS3Sink(client S3PutObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{Client: client, Bucket: bucket, Prefix: prefix}
}

// Put uploads data as a JSON object and returns its s3:// URI
func (s *S3Sink) Put(ctx context.Context, key string, data []byte) (string, error) {
	if s.Bucket == "" {
		return "", fmt.Errorf("S3 sink has no bucket")
	}

	objectKey := key
	if s.Prefix != "" {
		objectKey = path.Join(s.Prefix, key)
	}

	start := time.Now()
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	logging.LogAPICall("s3:PutObject", err == nil, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to upload report to s3://%s/%s: %w", s.Bucket, objectKey, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.Bucket, objectKey), nil
}

// MultiSink fans a document out to several sinks and stops at the first error
type MultiSink []Sink

// Put writes data to every sink in order. The returned location lists
// each destination, comma separated.
func (m MultiSink) Put(ctx context.Context, key string, data []byte) (string, error) {
	var locations []string
	for _, sink := range m {
		loc, err := sink.Put(ctx, key, data)
		if err != nil {
			return "", err
		}
		locations = append(locations, loc)
	}
	return strings.Join(locations, ", "), nil
}
