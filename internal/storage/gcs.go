package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadTimeout = 5 * time.Minute

// GCSPublisher uploads ripped tracks to a Google Cloud Storage bucket.
type GCSPublisher struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSPublisher creates a publisher. An empty credentialsFile uses application default credentials.
func NewGCSPublisher(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSPublisher, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSPublisher{
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
	}, nil
}

// ObjectName joins the configured prefix with the given parts.
func (s *GCSPublisher) ObjectName(parts ...string) string {
	return objectName(s.objectPrefix, parts...)
}

func objectName(prefix string, parts ...string) string {
	elems := make([]string, 0, len(parts)+1)
	if p := strings.Trim(prefix, "/"); p != "" {
		elems = append(elems, p)
	}
	for _, part := range parts {
		if p := strings.Trim(part, "/"); p != "" {
			elems = append(elems, p)
		}
	}
	return path.Join(elems...)
}

// Publish uploads a local file and returns its gs:// location.
func (s *GCSPublisher) Publish(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer f.Close()

	object := s.ObjectName(name)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, object), nil
}

// Exists reports whether an object is already present in the bucket.
func (s *GCSPublisher) Exists(ctx context.Context, name string) bool {
	_, err := s.client.Bucket(s.bucket).Object(s.ObjectName(name)).Attrs(ctx)
	return err == nil
}

// Close closes the GCS client
func (s *GCSPublisher) Close() error {
	return s.client.Close()
}
