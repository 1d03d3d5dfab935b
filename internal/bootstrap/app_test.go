package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/optica/admin/internal/domain/partner"
	"github.com/optica/admin/internal/infrastructure/config"
	"github.com/optica/admin/internal/infrastructure/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestCoordinatorConfig(t *testing.T) {
	cfg := config.Default().Ads
	got := coordinatorConfig(cfg)

	assert.Equal(t, 6*time.Second, got.LoadTimeout)
	assert.Equal(t, 90*time.Second, got.MinShowInterval)
	assert.Equal(t, 15*time.Second, got.RewardedSafetyTimeout)
	assert.Equal(t, 2*time.Second, got.ErrorRetryDelay)
	assert.True(t, got.ShowAppOpenOnForeground)
}

func TestNew(t *testing.T) {
	t.Run("wires every screen with the default config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Export.Dir = t.TempDir()

		app, err := New(context.Background(), cfg, zaptest.NewLogger(t), WithStore(kvstore.NewMemoryStore()))
		require.NoError(t, err)
		defer app.Close(context.Background())

		assert.NotNil(t, app.Dashboard)
		assert.NotNil(t, app.Customers)
		assert.NotNil(t, app.Products)
		assert.NotNil(t, app.MeasurementTypes)
		assert.NotNil(t, app.MeasurementAttributes)
		assert.NotNil(t, app.CustomerMeasurements)
		assert.NotNil(t, app.InvoiceSettings)
		assert.NotNil(t, app.Invoices)
		assert.Len(t, app.adUnits, 2, "simulated ads stand in for the native SDK")
		assert.False(t, app.Session.LoggedIn())
	})

	t.Run("fails on an unknown store driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = "etcd"

		_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store")
	})

	t.Run("fails on an unknown export driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.Export.Driver = "ftp"

		_, err := New(context.Background(), cfg, zaptest.NewLogger(t), WithStore(kvstore.NewMemoryStore()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "export")
	})
}

func TestNew_NotificationsLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()

	app, err := New(context.Background(), cfg, zap.New(core), WithStore(kvstore.NewMemoryStore()))
	require.NoError(t, err)
	defer app.Close(context.Background())

	_, err = app.Customers.Save(context.Background(), partner.CustomerInput{}, 0)
	require.Error(t, err)

	notes := app.Notifications.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, 1, logs.FilterMessage(notes[0].Text).Len())
}
