// Package report drives the dashboard.
package report

import (
	"context"
	"errors"
	"sync"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/report"
	"go.uber.org/zap"
)

// SalesPageSize is the number of recent sales per dashboard page
const SalesPageSize = 10

// DashboardAPI is what the dashboard reads
type DashboardAPI interface {
	Dashboard(ctx context.Context) (report.DashboardStats, error)
	Sales(ctx context.Context) ([]report.Sale, error)
	Sliders(ctx context.Context) ([]report.Slider, error)
}

// DashboardService holds the headline totals, the recent sales table and
// the home banners. Each section loads independently; a failed section
// keeps its previous content.
type DashboardService struct {
	api      DashboardAPI
	notifier screen.Notifier
	logger   *zap.Logger

	mu      sync.RWMutex
	stats   report.DashboardStats
	sales   []report.Sale
	sliders []report.Slider
	page    int
}

// NewDashboardService creates the dashboard
func NewDashboardService(api DashboardAPI, notifier screen.Notifier, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = screen.NewLogNotifier(logger)
	}
	return &DashboardService{api: api, notifier: notifier, logger: logger.Named("dashboard"), page: 1}
}

// Load refreshes every section and returns the joined errors
func (s *DashboardService) Load(ctx context.Context) error {
	var errs []error

	if stats, err := s.api.Dashboard(ctx); err != nil {
		errs = append(errs, s.fail(ctx, "Failed to load dashboard", err))
	} else {
		s.mu.Lock()
		s.stats = stats
		s.mu.Unlock()
	}

	if sales, err := s.api.Sales(ctx); err != nil {
		errs = append(errs, s.fail(ctx, "Failed to load sales", err))
	} else {
		s.mu.Lock()
		s.sales = sales
		s.mu.Unlock()
	}

	if sliders, err := s.api.Sliders(ctx); err != nil {
		// banners are decorative
		s.logger.Warn("Failed to load sliders", zap.Error(err))
		errs = append(errs, err)
	} else {
		s.mu.Lock()
		s.sliders = sliders
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Stats returns the headline totals
func (s *DashboardService) Stats() report.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Sliders returns the home banners
func (s *DashboardService) Sliders() []report.Slider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sliders
}

// SalesPage moves the recent sales table to page n (clamped)
func (s *DashboardService) SalesPage(n int) screen.Page[report.Sale] {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := screen.Paginate(s.sales, n, SalesPageSize)
	s.page = p.Number
	return p
}

// NextSales advances the recent sales table
func (s *DashboardService) NextSales() screen.Page[report.Sale] {
	s.mu.RLock()
	n := s.page + 1
	s.mu.RUnlock()
	return s.SalesPage(n)
}

// PrevSales goes back in the recent sales table
func (s *DashboardService) PrevSales() screen.Page[report.Sale] {
	s.mu.RLock()
	n := s.page - 1
	s.mu.RUnlock()
	return s.SalesPage(n)
}

func (s *DashboardService) fail(ctx context.Context, text string, err error) error {
	s.logger.Warn(text, zap.Error(err))
	s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: text})
	return err
}
