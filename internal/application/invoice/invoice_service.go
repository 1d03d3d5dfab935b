// Package invoice drives the invoice screen: pickers, the editable draft,
// submission and the printable preview.
package invoice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/ads"
	"github.com/optica/admin/internal/domain/catalog"
	"github.com/optica/admin/internal/domain/invoice"
	"github.com/optica/admin/internal/domain/partner"
	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoPreview is returned when exporting before any invoice was generated
var ErrNoPreview = shared.NewDomainError("NO_PREVIEW", "Generate an invoice first")

// InvoiceAPI is what the invoice screen talks to
type InvoiceAPI interface {
	Customers(ctx context.Context) ([]*partner.Customer, error)
	Products(ctx context.Context) ([]*catalog.Product, error)
	CreateInvoice(ctx context.Context, sub invoice.Submission) (invoice.Created, error)
}

// RewardGate shows a rewarded ad after an invoice is stored
type RewardGate interface {
	RequestRewardedShow(ctx context.Context) (ads.RewardResult, error)
}

// Exporter renders and archives a preview, returning where it was stored
type Exporter interface {
	Export(ctx context.Context, p invoice.Preview) (string, error)
}

// Config tunes the invoice screen
type Config struct {
	TaxRate    decimal.Decimal
	SalesmanID int
}

// Service is the invoice screen
type Service struct {
	api      InvoiceAPI
	rewards  RewardGate
	exporter Exporter
	notifier screen.Notifier
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time

	mu        sync.Mutex
	draft     *invoice.Draft
	customers []*partner.Customer
	products  []*catalog.Product
	preview   *invoice.Preview
}

// Option configures a Service
type Option func(*Service)

// WithRewardGate shows a rewarded ad after each generated invoice
func WithRewardGate(g RewardGate) Option {
	return func(s *Service) { s.rewards = g }
}

// WithExporter enables preview export
func WithExporter(e Exporter) Option {
	return func(s *Service) { s.exporter = e }
}

// NewService creates the invoice screen
func NewService(api InvoiceAPI, cfg Config, notifier screen.Notifier, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = screen.NewLogNotifier(logger)
	}
	s := &Service{
		api:      api,
		notifier: notifier,
		logger:   logger.Named("invoice"),
		cfg:      cfg,
		now:      time.Now,
		draft:    invoice.NewDraft(cfg.TaxRate),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the active customers and products offered by the pickers
func (s *Service) Init(ctx context.Context) error {
	customers, err := s.api.Customers(ctx)
	if err != nil {
		s.fail(ctx, "Failed to load customers", err)
		return err
	}
	products, err := s.api.Products(ctx)
	if err != nil {
		s.fail(ctx, "Failed to load products", err)
		return err
	}
	s.mu.Lock()
	s.customers = partner.FilterActive(customers)
	s.products = catalog.FilterActive(products)
	s.mu.Unlock()
	return nil
}

// Customers returns the customer picker entries
func (s *Service) Customers() []*partner.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers
}

// Products returns the product picker entries
func (s *Service) Products() []*catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products
}

// SelectCustomer picks a customer from the picker
func (s *Service) SelectCustomer(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.ID == id {
			s.draft.SetCustomer(invoice.Customer{ID: c.ID, Name: c.FullName()})
			return nil
		}
	}
	return shared.ErrNotFound
}

// AddProduct puts a picked product on the draft at its stitching cost.
// A product already on the draft is reported with an info notification.
func (s *Service) AddProduct(ctx context.Context, id int) error {
	s.mu.Lock()
	var p *catalog.Product
	for _, c := range s.products {
		if c.ID == id {
			p = c
			break
		}
	}
	if p == nil {
		s.mu.Unlock()
		return shared.ErrNotFound
	}
	added := s.draft.AddProduct(p.ID, p.Name, p.ItemCode, p.StitchingCost)
	s.mu.Unlock()

	if !added {
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindInfo, Text: "Product already added"})
	}
	return nil
}

// SetQuantity changes a line quantity; values below 1 become 1
func (s *Service) SetQuantity(productID, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetQuantity(productID, qty)
}

// RemoveProduct drops a line
func (s *Service) RemoveProduct(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.RemoveProduct(productID)
}

// SetPaid takes the typed paid amount; it is clamped to the grand total
func (s *Service) SetPaid(amount string) invoice.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetPaid(invoice.ParseAmount(amount))
	return s.draft.Totals()
}

// SetDiscount takes the typed discount; it is clamped to what remains
// after the paid amount
func (s *Service) SetDiscount(amount string) invoice.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetDiscount(invoice.ParseAmount(amount))
	return s.draft.Totals()
}

// SetNotes sets the invoice notes
func (s *Service) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetNotes(notes)
}

// SetPayMode selects the payment method
func (s *Service) SetPayMode(m invoice.PayMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetPayMode(m)
}

// Items returns the draft lines
func (s *Service) Items() []invoice.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Items()
}

// Totals returns the derived totals
func (s *Service) Totals() invoice.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Totals()
}

// Generate validates and submits the draft. After the server stores it, a
// rewarded ad is offered (its failures are only logged), the preview of the
// submitted draft is kept for export and the draft is cleared.
func (s *Service) Generate(ctx context.Context) (invoice.Preview, error) {
	s.mu.Lock()
	sub, err := s.draft.Submission(s.cfg.SalesmanID)
	snapshot := s.draft.Snapshot()
	s.mu.Unlock()
	if err != nil {
		var ve *shared.ValidationError
		if errors.As(err, &ve) {
			s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: ve.First()})
		}
		return invoice.Preview{}, err
	}

	created, err := s.api.CreateInvoice(ctx, sub)
	if err != nil {
		s.fail(ctx, "Failed to create invoice", err)
		return invoice.Preview{}, err
	}
	s.logger.Info("Invoice created",
		zap.Int("id", created.ID),
		zap.String("invoice_number", created.InvoiceNumber.String()),
		zap.Int("customer_id", sub.CustomerID),
		zap.Int("items", len(sub.CartItems)),
	)

	if s.rewards != nil {
		res, err := s.rewards.RequestRewardedShow(ctx)
		if err != nil {
			s.logger.Warn("Rewarded ad after invoice failed", zap.Error(err))
		} else {
			s.logger.Debug("Rewarded ad after invoice finished", zap.Bool("earned", res.Earned))
		}
	}

	preview := snapshot.Issued(created, s.now())
	s.mu.Lock()
	s.preview = &preview
	s.draft.Reset()
	s.mu.Unlock()

	s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindSuccess, Text: "Invoice created successfully"})
	return preview, nil
}

// Preview returns the last generated invoice
func (s *Service) Preview() (invoice.Preview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return invoice.Preview{}, false
	}
	return *s.preview, true
}

// ClosePreview dismisses the preview
func (s *Service) ClosePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = nil
}

// Export renders and archives the last preview
func (s *Service) Export(ctx context.Context) (string, error) {
	p, ok := s.Preview()
	if !ok {
		return "", ErrNoPreview
	}
	if s.exporter == nil {
		return "", shared.NewDomainError("EXPORT_DISABLED", "Invoice export is not configured")
	}
	loc, err := s.exporter.Export(ctx, p)
	if err != nil {
		s.fail(ctx, "Failed to export invoice", err)
		return "", err
	}
	s.logger.Info("Invoice exported", zap.String("invoice_number", p.InvoiceNumber), zap.String("location", loc))
	s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindSuccess, Text: "Invoice exported"})
	return loc, nil
}

func (s *Service) fail(ctx context.Context, text string, err error) {
	s.logger.Warn(text, zap.Error(err))
	s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: screen.ErrorText(err, text)})
}
