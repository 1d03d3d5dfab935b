package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/optica/admin/internal/domain/shared"
	"github.com/optica/admin/internal/infrastructure/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvEntry is one row of the local state table
type kvEntry struct {
	Name      string `gorm:"column:name;primaryKey;size:191"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// SQLiteConfig configures the SQLite backend
type SQLiteConfig struct {
	Path          string // file path or ":memory:"
	LogLevel      string // app log level, mapped to GORM levels
	SlowThreshold time.Duration
	Tracing       bool // register the otelgorm plugin
}

// SQLiteStore persists values in a single SQLite table
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database and migrates the table
func NewSQLiteStore(cfg SQLiteConfig, zapLogger *zap.Logger) (*SQLiteStore, error) {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}
	if cfg.SlowThreshold == 0 {
		cfg.SlowThreshold = 200 * time.Millisecond
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, logger.GormLevel(cfg.LogLevel), cfg.SlowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// one connection keeps ":memory:" databases alive and serialises writers
	sqlDB.SetMaxOpenConns(1)

	if cfg.Tracing {
		if err := db.Use(otelgorm.NewPlugin(
			otelgorm.WithDBName("sqlite"),
			otelgorm.WithoutQueryVariables(),
		)); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to register sqlite tracing: %w", err)
		}
	}

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value for key
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return e.Value, true, nil
}

// Set upserts value under key
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kvEntry{Name: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete removes key; missing keys are not an error
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&kvEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

var _ shared.KVStore = (*SQLiteStore)(nil)
