package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("not found")

// Storage provides an abstraction over key-value style file storage.
// Documents and uploaded files both live behind this interface.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}

const (
	TypeLocal  = "local"
	TypeS3     = "s3"
	TypeSQLite = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	Type    string
	BaseDir string

	SQLitePath string

	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string

	// MaxRetries and RetryDelay are handed to the S3 SDK retryer.
	MaxRetries int
	RetryDelay time.Duration
}

// Open builds the backend named by cfg.Type. Unknown types fall back to local.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket")
		}
		s, err := NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region,
			WithS3Endpoint(cfg.S3Endpoint),
			WithS3Retry(cfg.MaxRetries, cfg.RetryDelay),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	case TypeSQLite:
		s, err := NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := NewLocalStorage(cfg.BaseDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
