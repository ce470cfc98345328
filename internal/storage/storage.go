// Package storage persists heap snapshots and rendered sample reports,
// either on the local filesystem or in an object store.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/runtime-analysis/pkg/config"
)

// Store is the persistence backend for snapshot inputs and sample
// reports. Keys are slash-separated paths relative to the store root.
type Store interface {
	// Put writes the data under key.
	Put(ctx context.Context, key string, reader io.Reader) error

	// PutFile uploads a local file under key.
	PutFile(ctx context.Context, key string, localPath string) error

	// Get opens the data stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// GetFile downloads the data stored under key into a local file.
	GetFile(ctx context.Context, key string, localPath string) error

	// Delete removes the data stored under key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether data is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a locator for key (a path or a public URL).
	URL(key string) string
}

// Type identifies a storage backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeCOS   Type = "cos"
)

// New creates a Store from configuration.
func New(cfg *config.StorageConfig) (Store, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch Type(cfg.Type) {
	case TypeCOS:
		return NewCOSStore(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return NewLocalStore(cfg.LocalPath)
	}
}

// ValidateConfig validates the storage configuration.
func ValidateConfig(cfg *config.StorageConfig) error {
	if cfg == nil {
		return fmt.Errorf("storage config is nil")
	}

	t := Type(cfg.Type)
	if t == "" {
		t = TypeLocal
	}
	if t != TypeLocal && t != TypeCOS {
		return fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	if t == TypeCOS {
		if cfg.Bucket == "" {
			return fmt.Errorf("COS bucket is required")
		}
		if cfg.Region == "" {
			return fmt.Errorf("COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
	}

	if t == TypeLocal && cfg.LocalPath == "" {
		return fmt.Errorf("local storage path is required")
	}

	return nil
}
