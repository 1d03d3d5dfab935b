package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/optica/admin/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "production config", cfg: ProductionConfig()},
		{name: "stderr without time format", cfg: &Config{Level: "debug", Format: "json", Output: "stderr"}},
		{name: "unwritable file", cfg: &Config{Output: "/nonexistent-dir/app.log"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.Info("invoice generated", zap.String("invoice_number", "INV-7"))
	Sync(l)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"invoice generated"`)
	assert.Contains(t, string(data), `"invoice_number":"INV-7"`)
}

func TestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := FromConfig(
		config.AppConfig{Name: "optica-admin", Env: "production"},
		config.LogConfig{Level: "debug", Format: "console", Output: path},
	)
	require.NoError(t, err)

	l.Debug("hello")
	Sync(l)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// production forces json
	assert.Contains(t, string(data), `"app":"optica-admin"`)
	assert.Contains(t, string(data), `"env":"production"`)
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "staging"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewForEnvironment(env)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}
