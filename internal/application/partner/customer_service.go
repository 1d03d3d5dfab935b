// Package partner drives the customer screens.
package partner

import (
	"context"
	"time"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/partner"
	"go.uber.org/zap"
)

// CustomerPageSize is the number of customers per list page
const CustomerPageSize = 10

// CustomerAPI is the remote customer collection
type CustomerAPI interface {
	Customers(ctx context.Context) ([]*partner.Customer, error)
	Customer(ctx context.Context, id int) (*partner.Customer, error)
	CreateCustomer(ctx context.Context, in partner.CustomerInput) (*partner.Customer, error)
	UpdateCustomer(ctx context.Context, id int, in partner.CustomerInput) error
	ToggleCustomer(ctx context.Context, id int) error
}

// CustomerService is the customer list and form
type CustomerService struct {
	*screen.ListController[*partner.Customer, partner.CustomerInput]
	api      CustomerAPI
	notifier screen.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewCustomerService creates the customer screen
func NewCustomerService(api CustomerAPI, notifier screen.Notifier, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = screen.NewLogNotifier(logger)
	}
	src := screen.SourceFuncs[*partner.Customer, partner.CustomerInput]{
		ListFn:   api.Customers,
		ToggleFn: api.ToggleCustomer,
		CreateFn: api.CreateCustomer,
		UpdateFn: api.UpdateCustomer,
	}
	opts := screen.Options[*partner.Customer, partner.CustomerInput]{
		Name:     "customers",
		PageSize: CustomerPageSize,
		Apply:    func(c *partner.Customer, in partner.CustomerInput) { in.Apply(c) },
		Match:    func(c *partner.Customer, q string) bool { return c.MatchesName(q) },
		Messages: screen.Messages{
			LoadFailed:   "Failed to load customers",
			Created:      "Customer created successfully",
			Updated:      "Customer updated successfully",
			SaveFailed:   "Failed to save customer",
			Toggled:      "Customer status updated",
			ToggleFailed: "Failed to update customer status",
		},
	}
	return &CustomerService{
		ListController: screen.NewListController(src, opts, notifier, logger),
		api:            api,
		notifier:       notifier,
		logger:         logger.Named("customers"),
		now:            time.Now,
	}
}

// Edit loads a customer from the server and returns the prefilled form
func (s *CustomerService) Edit(ctx context.Context, id int) (partner.CustomerInput, error) {
	c, err := s.api.Customer(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to load customer", zap.Int("id", id), zap.Error(err))
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: "Failed to load customer details"})
		return partner.CustomerInput{}, err
	}
	return InputFrom(c), nil
}

// Save stamps new customers with today's date when none was entered
func (s *CustomerService) Save(ctx context.Context, in partner.CustomerInput, editID int) (*partner.Customer, error) {
	if in.Date == "" && editID == 0 {
		in.Date = s.now().Format(time.DateOnly)
	}
	return s.ListController.Save(ctx, in, editID)
}

// ActiveCustomers lists the customers offered by the invoice and
// measurement pickers
func (s *CustomerService) ActiveCustomers() []*partner.Customer {
	return s.ActiveItems()
}

// InputFrom converts a stored customer into the edit form
func InputFrom(c *partner.Customer) partner.CustomerInput {
	return partner.CustomerInput{
		FileNumber: c.FileNumber.String(),
		FirstName:  c.FirstName,
		Phone:      c.Phone,
		Address:    c.Address,
		Date:       c.Date,
	}
}
