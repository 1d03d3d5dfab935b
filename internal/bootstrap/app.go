// Package bootstrap assembles the admin app from configuration: stores,
// REST client, ad coordinator and every screen controller.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	adsapp "github.com/optica/admin/internal/application/ads"
	catalogapp "github.com/optica/admin/internal/application/catalog"
	identityapp "github.com/optica/admin/internal/application/identity"
	invoiceapp "github.com/optica/admin/internal/application/invoice"
	measurementapp "github.com/optica/admin/internal/application/measurement"
	partnerapp "github.com/optica/admin/internal/application/partner"
	"github.com/optica/admin/internal/application/preferences"
	reportapp "github.com/optica/admin/internal/application/report"
	"github.com/optica/admin/internal/application/screen"
	settingsapp "github.com/optica/admin/internal/application/settings"
	"github.com/optica/admin/internal/domain/ads"
	"github.com/optica/admin/internal/domain/identity"
	"github.com/optica/admin/internal/domain/shared"
	simads "github.com/optica/admin/internal/infrastructure/ads"
	"github.com/optica/admin/internal/infrastructure/api"
	"github.com/optica/admin/internal/infrastructure/auth"
	"github.com/optica/admin/internal/infrastructure/config"
	"github.com/optica/admin/internal/infrastructure/kvstore"
	"github.com/optica/admin/internal/infrastructure/printing"
	"github.com/optica/admin/internal/infrastructure/storage"
	"github.com/optica/admin/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	notificationBuffer = 64
	tokenLeeway        = 30 * time.Second
	simulatedLatency   = 500 * time.Millisecond
	simulatedDisplay   = 3 * time.Second
)

// App holds every wired component. Hosts drive the screens directly.
type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	Notifications *screen.ChannelNotifier

	Store    shared.KVStore
	Session  *identity.Session
	Client   *api.Client
	Auth     *identityapp.AuthService
	Ads      *adsapp.Coordinator
	Currency *preferences.CurrencyService

	Dashboard             *reportapp.DashboardService
	Customers             *partnerapp.CustomerService
	Products              *catalogapp.ProductService
	MeasurementTypes      *measurementapp.TypeService
	MeasurementAttributes *measurementapp.AttributeService
	CustomerMeasurements  *measurementapp.CustomerMeasurementService
	InvoiceSettings       *settingsapp.InvoiceSettingsService
	Invoices              *invoiceapp.Service

	telemetry *telemetry.Providers
	pdf       printing.PDFRenderer
	adUnits   []interface{ Close() }
}

// Option overrides parts of the assembly, mostly for tests
type Option func(*options)

type options struct {
	appOpen, rewarded ads.Ad
	store             shared.KVStore
}

// WithAds replaces the simulated ad SDK
func WithAds(appOpen, rewarded ads.Ad) Option {
	return func(o *options) { o.appOpen, o.rewarded = appOpen, rewarded }
}

// WithStore replaces the configured key-value store
func WithStore(s shared.KVStore) Option {
	return func(o *options) { o.store = s }
}

// New wires the app in dependency order. Nothing talks to the backend yet;
// call Start for that.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.telemetry, err = telemetry.Setup(ctx, telemetry.FromConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	a.Store = o.store
	if a.Store == nil {
		a.Store, err = kvstore.NewFactory(cfg.Store, cfg.Redis,
			kvstore.WithLogger(logger),
			kvstore.WithLogLevel(cfg.Log.Level),
			kvstore.WithTracing(cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled),
		).CreateStore()
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
	}

	a.Notifications = screen.NewChannelNotifier(notificationBuffer)
	notifier := screen.Multi{screen.NewLogNotifier(logger), a.Notifications}

	a.Session = identity.NewSession()
	a.Client, err = api.New(cfg.API, a.Session, api.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	a.Auth = identityapp.NewAuthService(a.Client, a.Session, a.Store, auth.NewInspector(tokenLeeway), notifier, logger)
	a.Currency = preferences.NewCurrencyService(a.Store, logger)

	appOpen, rewarded := o.appOpen, o.rewarded
	if appOpen == nil || rewarded == nil {
		appOpen, rewarded = a.simulatedAds()
	}
	a.Ads = adsapp.NewCoordinator(appOpen, rewarded,
		adsapp.NewEntitlements(a.Store, nil, logger),
		coordinatorConfig(cfg.Ads),
		adsapp.WithLogger(logger),
		adsapp.WithMeter(a.telemetry.Meter.Meter("github.com/optica/admin/ads")),
	)

	exporter, err := a.exporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	a.Dashboard = reportapp.NewDashboardService(a.Client, notifier, logger)
	a.Customers = partnerapp.NewCustomerService(a.Client, notifier, logger)
	a.Products = catalogapp.NewProductService(a.Client, notifier, logger)
	a.MeasurementTypes = measurementapp.NewTypeService(a.Client, notifier, logger)
	a.MeasurementAttributes = measurementapp.NewAttributeService(a.Client, notifier, logger)
	a.CustomerMeasurements = measurementapp.NewCustomerMeasurementService(a.Client, notifier, logger)
	a.InvoiceSettings = settingsapp.NewInvoiceSettingsService(a.Client, notifier, logger)
	a.Invoices = invoiceapp.NewService(a.Client,
		invoiceapp.Config{
			TaxRate:    decimal.NewFromFloat(cfg.Invoice.DefaultTaxRate),
			SalesmanID: cfg.Invoice.SalesmanID,
		},
		notifier, logger,
		invoiceapp.WithRewardGate(a.Ads),
		invoiceapp.WithExporter(exporter),
	)
	return a, nil
}

func (a *App) simulatedAds() (ads.Ad, ads.Ad) {
	cfg := a.Config.Ads
	if !cfg.UseTestUnits {
		a.Logger.Warn("no native ad SDK on this host, serving simulated ads for production units")
	}
	appOpen := simads.NewSimulatedAd(simads.SimulatedConfig{
		UnitID:      cfg.AppOpenUnitID,
		Kind:        ads.AppOpen,
		LoadLatency: simulatedLatency,
		DisplayTime: simulatedDisplay,
	}, a.Logger)
	rewarded := simads.NewSimulatedAd(simads.SimulatedConfig{
		UnitID:      cfg.RewardedUnitID,
		Kind:        ads.RewardedInterstitial,
		LoadLatency: simulatedLatency,
		DisplayTime: simulatedDisplay,
		Reward:      &ads.Reward{Type: "coins", Amount: 1},
	}, a.Logger)
	a.adUnits = append(a.adUnits, appOpen, rewarded)
	return appOpen, rewarded
}

func (a *App) exporter(ctx context.Context) (*printing.Exporter, error) {
	store, err := storage.New(ctx, a.Config.Export, a.Logger)
	if err != nil {
		return nil, err
	}
	tmpl, err := printing.NewInvoiceTemplate(a.Currency.FormatAmount)
	if err != nil {
		return nil, err
	}
	var opts []printing.ExporterOption
	if a.Config.Printing.Enabled {
		a.pdf = printing.NewChromedpRenderer(printing.ChromedpConfigFrom(a.Config.Printing, a.Logger))
		opts = append(opts, printing.WithPDF(a.pdf))
	}
	return printing.NewExporter(tmpl, store, a.Logger, opts...), nil
}

func coordinatorConfig(cfg config.AdsConfig) adsapp.Config {
	return adsapp.Config{
		LoadTimeout:             cfg.LoadTimeout,
		MinShowInterval:         cfg.MinShowInterval,
		RewardedSafetyTimeout:   cfg.RewardedSafetyTimeout,
		ErrorRetryDelay:         cfg.ErrorRetryDelay,
		ShowAppOpenOnForeground: cfg.ShowAppOpenOnForeground,
	}
}

// Start restores the persisted session and currency, reads the ads-removed
// flag and issues the first ad loads. A restored session also gets its
// dashboard loaded. It reports whether a user is signed in.
func (a *App) Start(ctx context.Context) bool {
	restored, err := a.Auth.Restore(ctx)
	if err != nil {
		a.Logger.Warn("session restore failed", zap.Error(err))
	}
	a.Currency.Load(ctx)
	a.Ads.Start(ctx)

	if restored {
		if err := a.Dashboard.Load(ctx); err != nil {
			a.handle(ctx, err)
		}
	}
	return a.Session.LoggedIn()
}

// handle logs the user out when a backend call reports the token is no
// longer accepted.
func (a *App) handle(ctx context.Context, err error) {
	if a.Auth.HandleUnauthorized(ctx, err) {
		a.Logger.Info("session expired, signed out")
	}
}

// SetForeground forwards a host lifecycle transition to the ad coordinator
func (a *App) SetForeground(active bool) {
	if active {
		a.Ads.HandleAppStateChange(adsapp.AppStateActive)
		return
	}
	a.Ads.HandleAppStateChange(adsapp.AppStateBackground)
}

// Close stops ads, releases the browser, closes the store and flushes
// telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Ads != nil {
		a.Ads.Close()
	}
	for _, u := range a.adUnits {
		u.Close()
	}
	if a.pdf != nil {
		errs = append(errs, a.pdf.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
