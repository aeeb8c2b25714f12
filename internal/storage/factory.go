package storage

import (
	"context"
	"fmt"
)

// Config holds object storage configuration.
type Config struct {
	Driver     string // "minio" (default) or "s3"
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	PathStyle  bool
	PublicBase string
}

// New creates a storage backend based on cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinioStorage(ctx, cfg)
	case "s3", "r2":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.Driver)
	}
}
