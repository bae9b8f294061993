package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/oas2types/internal/emitter"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound reports a snapshot that has never been written.
var ErrNotFound = errors.New("snapshot not found")

// Store persists the raw bytes of one snapshot.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	// Location names the snapshot in logs and errors.
	Location() string
}

// FileStore keeps the snapshot on the local filesystem.
type FileStore struct {
	Path string
}

func (s FileStore) Location() string { return s.Path }

func (s FileStore) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.Path, ErrNotFound)
	}
	return data, err
}

// Save replaces the file atomically.
func (s FileStore) Save(_ context.Context, data []byte) error {
	dir, base := filepath.Split(s.Path)
	if base == "" {
		return fmt.Errorf("snapshot path %q names a directory", s.Path)
	}
	return emitter.WriteFiles(dir, map[string][]byte{base: data}, true, nil)
}

// S3Config holds the connection settings of an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// ObjectStore keeps the snapshot as one object in S3-compatible storage.
type ObjectStore struct {
	client *minio.Client
	bucket string
	key    string
	region string

	initOnce sync.Once
	initErr  error
}

// NewObjectStore connects to cfg.Endpoint for the object named by an
// s3://bucket/key location.
func NewObjectStore(location string, cfg S3Config) (*ObjectStore, error) {
	bucket, key, err := splitObjectURL(location)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required for %s", location)
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &ObjectStore{client: client, bucket: bucket, key: key, region: region}, nil
}

func (s *ObjectStore) Location() string { return "s3://" + s.bucket + "/" + s.key }

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if !exists {
			s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		}
	})
	return s.initErr
}

func (s *ObjectStore) Load(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return data, nil
}

func (s *ObjectStore) mapErr(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w", s.Location(), ErrNotFound)
	}
	return err
}

func (s *ObjectStore) Save(ctx context.Context, data []byte) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/yaml",
	})
	return err
}

// OpenStore picks the backend for location: s3://bucket/key is object
// storage, anything else a local path.
func OpenStore(location string, cfg S3Config) (Store, error) {
	if strings.HasPrefix(location, "s3://") {
		return NewObjectStore(location, cfg)
	}
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("snapshot location is empty")
	}
	return FileStore{Path: location}, nil
}

func splitObjectURL(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", "", fmt.Errorf("object location %q must start with s3://", location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.Trim(key, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("object location %q must be s3://bucket/key", location)
	}
	return bucket, key, nil
}
