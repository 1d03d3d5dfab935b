package kvstore

import (
	"fmt"

	"github.com/optica/admin/internal/domain/shared"
	"github.com/optica/admin/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory creates the configured store backend
type Factory struct {
	storeConfig           config.StoreConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	logLevel              string
	tracing               bool
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the stores it creates
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithLogLevel sets the app log level used for SQL statement logging
func WithLogLevel(level string) FactoryOption {
	return func(f *Factory) {
		f.logLevel = level
	}
}

// WithTracing enables otelgorm tracing on the SQLite backend
func WithTracing(enabled bool) FactoryOption {
	return func(f *Factory) {
		f.tracing = enabled
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(storeCfg config.StoreConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		storeConfig:           storeCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the store selected by store.driver
func (f *Factory) CreateStore() (shared.KVStore, error) {
	switch f.storeConfig.Driver {
	case "", "memory":
		f.logger.Info("using in-memory key-value store")
		return NewMemoryStore(), nil

	case "sqlite":
		store, err := NewSQLiteStore(SQLiteConfig{
			Path:     f.storeConfig.SQLitePath,
			LogLevel: f.logLevel,
			Tracing:  f.tracing,
		}, f.logger)
		if err != nil {
			return nil, err
		}
		f.logger.Info("using sqlite key-value store", zap.String("path", f.storeConfig.SQLitePath))
		return store, nil

	case "redis":
		store, err := NewRedisStore(f.redisConfig, f.storeConfig.KeyPrefix)
		if err == nil {
			f.logger.Info("using Redis key-value store", zap.String("addr", f.redisConfig.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis store unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory key-value store. "+
			"Session and preferences will not survive a restart.",
			zap.Error(err),
		)
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", f.storeConfig.Driver)
	}
}
