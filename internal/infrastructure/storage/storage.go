// Package storage archives exported invoice documents on the local disk or
// in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/optica/admin/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrEmptyKey is returned for operations without a storage key
var ErrEmptyKey = errors.New("storage key is required")

// Store persists exported documents
type Store interface {
	// Put writes data under key and returns a location the user can open
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver
func New(ctx context.Context, cfg config.ExportConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.Dir)
	case "s3":
		s, err := NewS3Store(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown export driver %q", cfg.Driver)
	}
}
