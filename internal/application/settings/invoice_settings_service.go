// Package settings drives the invoice settings form.
package settings

import (
	"context"
	"sync"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/settings"
	"go.uber.org/zap"
)

// InvoiceSettingsAPI reads and writes the invoice settings
type InvoiceSettingsAPI interface {
	InvoiceSettings(ctx context.Context) (settings.InvoiceSettings, error)
	SaveInvoiceSettings(ctx context.Context, s settings.InvoiceSettings) error
}

// InvoiceSettingsService is the invoice settings form
type InvoiceSettingsService struct {
	api       InvoiceSettingsAPI
	validator *screen.Validator
	notifier  screen.Notifier
	logger    *zap.Logger

	mu      sync.RWMutex
	current settings.InvoiceSettings
}

// NewInvoiceSettingsService creates the settings form
func NewInvoiceSettingsService(api InvoiceSettingsAPI, notifier screen.Notifier, logger *zap.Logger) *InvoiceSettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = screen.NewLogNotifier(logger)
	}
	return &InvoiceSettingsService{
		api:       api,
		validator: screen.NewValidator(),
		notifier:  notifier,
		logger:    logger.Named("invoice_settings"),
	}
}

// Load fills the form from the server
func (s *InvoiceSettingsService) Load(ctx context.Context) (settings.InvoiceSettings, error) {
	got, err := s.api.InvoiceSettings(ctx)
	if err != nil {
		s.logger.Warn("Failed to load invoice settings", zap.Error(err))
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: "Failed to load invoice settings"})
		return s.Current(), err
	}
	s.mu.Lock()
	s.current = got
	s.mu.Unlock()
	return got, nil
}

// Current returns the last loaded or saved settings
func (s *InvoiceSettingsService) Current() settings.InvoiceSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates and stores the form
func (s *InvoiceSettingsService) Save(ctx context.Context, in settings.InvoiceSettings) error {
	if err := s.validator.Validate(in); err != nil {
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: err.Error()})
		return err
	}
	if err := s.api.SaveInvoiceSettings(ctx, in); err != nil {
		s.logger.Warn("Failed to save invoice settings", zap.Error(err))
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: "Failed to save invoice settings"})
		return err
	}
	s.mu.Lock()
	s.current = in
	s.mu.Unlock()
	s.logger.Info("Invoice settings saved", zap.String("next_number", in.NextNumber()))
	s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindSuccess, Text: "Invoice settings saved successfully"})
	return nil
}
