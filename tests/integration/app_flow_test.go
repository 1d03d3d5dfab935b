// Package integration drives the assembled app against the in-memory REST
// backend.
package integration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/optica/admin/internal/bootstrap"
	"github.com/optica/admin/internal/domain/ads"
	"github.com/optica/admin/internal/domain/identity"
	"github.com/optica/admin/internal/domain/invoice"
	simads "github.com/optica/admin/internal/infrastructure/ads"
	"github.com/optica/admin/internal/infrastructure/config"
	"github.com/optica/admin/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T, b *testutil.Backend) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.API.BaseURL = b.BaseURL()
	cfg.API.Timeout = 2 * time.Second
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = filepath.Join(dir, "state.db")
	cfg.Export.Dir = filepath.Join(dir, "exports")
	cfg.Ads.LoadTimeout = time.Second
	cfg.Ads.MinShowInterval = 0
	cfg.Ads.ErrorRetryDelay = 10 * time.Millisecond
	cfg.Ads.RewardedSafetyTimeout = time.Second
	return cfg
}

func fastAds(t *testing.T) bootstrap.Option {
	appOpen := simads.NewSimulatedAd(simads.SimulatedConfig{
		UnitID: config.TestAppOpenUnitID, Kind: ads.AppOpen,
		LoadLatency: time.Millisecond, DisplayTime: 5 * time.Millisecond,
	}, nil)
	rewarded := simads.NewSimulatedAd(simads.SimulatedConfig{
		UnitID: config.TestRewardedUnitID, Kind: ads.RewardedInterstitial,
		LoadLatency: time.Millisecond, DisplayTime: 5 * time.Millisecond,
		Reward: &ads.Reward{Type: "coins", Amount: 1},
	}, nil)
	t.Cleanup(func() {
		appOpen.Close()
		rewarded.Close()
	})
	return bootstrap.WithAds(appOpen, rewarded)
}

func startApp(t *testing.T, cfg *config.Config) (*bootstrap.App, bool) {
	t.Helper()
	ctx := testutil.Context(t)
	app, err := bootstrap.New(ctx, cfg, zaptest.NewLogger(t), fastAds(t))
	require.NoError(t, err)
	return app, app.Start(ctx)
}

func TestAppFlow_LoginInvoiceExport(t *testing.T) {
	b := testutil.NewBackend(t)
	cfg := testConfig(t, b)
	ctx := testutil.Context(t)

	app, loggedIn := startApp(t, cfg)
	defer app.Close(ctx)
	require.False(t, loggedIn)

	_, err := app.Auth.Login(ctx, identity.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
	require.NoError(t, err)
	require.True(t, app.Session.LoggedIn())

	require.NoError(t, app.Dashboard.Load(ctx))
	assert.Equal(t, "15230.50", app.Dashboard.Stats().TotalSales.StringFixed(2))

	require.NoError(t, app.Invoices.Init(ctx))
	require.NotEmpty(t, app.Invoices.Customers())
	require.NotEmpty(t, app.Invoices.Products())

	require.NoError(t, app.Invoices.SelectCustomer(app.Invoices.Customers()[0].ID))
	require.NoError(t, app.Invoices.AddProduct(ctx, app.Invoices.Products()[0].ID))
	app.Invoices.SetQuantity(app.Invoices.Products()[0].ID, 2)
	require.True(t, app.Invoices.SetPayMode(invoice.PayModeUPI))

	preview, err := app.Invoices.Generate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, preview.InvoiceNumber)
	assert.Empty(t, app.Invoices.Items(), "draft resets after generate")

	subs := b.SubmittedInvoices()
	require.Len(t, subs, 1)
	assert.Equal(t, cfg.Invoice.SalesmanID, subs[0].SalesmanID)

	loc, err := app.Invoices.Export(ctx)
	require.NoError(t, err)
	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Contains(t, string(data), preview.InvoiceNumber)
	assert.Contains(t, string(data), "UPI")

	assert.Contains(t, app.Notifications.Texts(), "Invoice created successfully")
}

func TestAppFlow_SessionSurvivesRestart(t *testing.T) {
	b := testutil.NewBackend(t)
	cfg := testConfig(t, b)
	ctx := testutil.Context(t)

	first, loggedIn := startApp(t, cfg)
	require.False(t, loggedIn)
	_, err := first.Auth.Login(ctx, identity.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
	require.NoError(t, err)
	_, err = first.Currency.Select(ctx, "EUR")
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second, loggedIn := startApp(t, cfg)
	defer second.Close(ctx)
	assert.True(t, loggedIn)
	assert.Equal(t, "€", second.Currency.Symbol())
	assert.NotEmpty(t, b.Requests("GET", "/admin/dashboard"), "restored session loads the dashboard")
}

func TestAppFlow_RejectedTokenSignsOut(t *testing.T) {
	b := testutil.NewBackend(t)
	cfg := testConfig(t, b)
	ctx := testutil.Context(t)

	first, _ := startApp(t, cfg)
	_, err := first.Auth.Login(ctx, identity.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	b.Fail("GET", "/admin/dashboard", 401, 1, "Unauthenticated.")

	second, loggedIn := startApp(t, cfg)
	defer second.Close(ctx)
	assert.False(t, loggedIn)
	assert.Contains(t, second.Notifications.Texts(), "Session expired, please log in again")
}

func TestAppFlow_LifecycleTransitions(t *testing.T) {
	b := testutil.NewBackend(t)
	app, _ := startApp(t, testConfig(t, b))
	defer app.Close(testutil.Context(t))

	require.Eventually(t, app.Ads.IsAppOpenLoaded, time.Second, 5*time.Millisecond)

	app.SetForeground(false)
	assert.Equal(t, "background", string(app.Ads.AppState()))
	app.SetForeground(true)
	assert.Equal(t, "active", string(app.Ads.AppState()))
}
