package measurement

import (
	"context"
	"slices"
	"sync"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/measurement"
	"github.com/optica/admin/internal/domain/partner"
	"github.com/optica/admin/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerMeasurementAPI is what the customer measurement form talks to
type CustomerMeasurementAPI interface {
	Customers(ctx context.Context) ([]*partner.Customer, error)
	MeasurementTypes(ctx context.Context) ([]*measurement.Type, error)
	TypeAttributes(ctx context.Context, typeID int) ([]measurement.Attribute, error)
	CustomerMeasurement(ctx context.Context, customerID, typeID int) (*measurement.Detail, error)
	SaveCustomerMeasurement(ctx context.Context, customerID int, rec measurement.Record) error
}

// MeasurementForm is a snapshot of the customer measurement form
type MeasurementForm struct {
	Customers  []*partner.Customer
	Types      []*measurement.Type
	CustomerID int
	TypeID     int
	Attributes []measurement.Attribute
	Values     measurement.Values
	Unit       measurement.Unit
	Notes      string
}

// CustomerMeasurementService records measurements of one type for one
// customer. Values are reloaded whenever the customer or type changes.
type CustomerMeasurementService struct {
	api      CustomerMeasurementAPI
	notifier screen.Notifier
	logger   *zap.Logger

	mu   sync.Mutex
	form MeasurementForm
}

// NewCustomerMeasurementService creates the customer measurement screen
func NewCustomerMeasurementService(api CustomerMeasurementAPI, notifier screen.Notifier, logger *zap.Logger) *CustomerMeasurementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = screen.NewLogNotifier(logger)
	}
	return &CustomerMeasurementService{
		api:      api,
		notifier: notifier,
		logger:   logger.Named("customer_measurements"),
		form:     MeasurementForm{Unit: measurement.UnitInches, Values: measurement.Values{}},
	}
}

// Init loads the pickers: active types by id and active customers
func (s *CustomerMeasurementService) Init(ctx context.Context) error {
	types, err := s.api.MeasurementTypes(ctx)
	if err != nil {
		s.fail(ctx, "Failed to load measurement types", err)
		return err
	}
	customers, err := s.api.Customers(ctx)
	if err != nil {
		s.fail(ctx, "Failed to load customers", err)
		return err
	}

	active := make([]*measurement.Type, 0, len(types))
	for _, t := range types {
		if t.Active() {
			active = append(active, t)
		}
	}
	slices.SortFunc(active, func(a, b *measurement.Type) int { return a.ID - b.ID })

	s.mu.Lock()
	s.form.Types = active
	s.form.Customers = partner.FilterActive(customers)
	s.mu.Unlock()
	return nil
}

// Form returns a copy of the current form state
func (s *CustomerMeasurementService) Form() MeasurementForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.form
	f.Attributes = slices.Clone(f.Attributes)
	f.Values = make(measurement.Values, len(s.form.Values))
	for k, v := range s.form.Values {
		f.Values[k] = v
	}
	return f
}

// SelectCustomer switches the customer and reloads stored values
func (s *CustomerMeasurementService) SelectCustomer(ctx context.Context, customerID int) error {
	s.mu.Lock()
	s.form.CustomerID = customerID
	s.mu.Unlock()
	return s.loadValues(ctx)
}

// SelectType switches the type, loads its attributes and reloads values
func (s *CustomerMeasurementService) SelectType(ctx context.Context, typeID int) error {
	attrs, err := s.api.TypeAttributes(ctx, typeID)
	if err != nil {
		s.fail(ctx, "Failed to load attributes", err)
		return err
	}
	s.mu.Lock()
	s.form.TypeID = typeID
	s.form.Attributes = attrs
	s.form.Values = measurement.Blank(attrs)
	s.mu.Unlock()
	return s.loadValues(ctx)
}

// loadValues fills the form from the stored measurement. A customer
// without one, or a failed lookup, leaves the values blank.
func (s *CustomerMeasurementService) loadValues(ctx context.Context) error {
	s.mu.Lock()
	cid, tid, attrs := s.form.CustomerID, s.form.TypeID, s.form.Attributes
	s.mu.Unlock()
	if cid == 0 || tid == 0 {
		return nil
	}

	detail, err := s.api.CustomerMeasurement(ctx, cid, tid)
	if err != nil {
		s.logger.Debug("No stored measurement", zap.Int("customer_id", cid), zap.Int("type_id", tid), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.CustomerID != cid || s.form.TypeID != tid {
		return nil
	}
	s.form.Values = detail.Fill(attrs)
	s.form.Unit = measurement.UnitInches
	s.form.Notes = ""
	if detail != nil {
		s.form.Unit = detail.Unit.OrDefault()
		s.form.Notes = detail.Notes
	}
	return nil
}

// SetValue records the value typed for an attribute key
func (s *CustomerMeasurementService) SetValue(key int, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Values[key] = value
}

// SetUnit changes the unit; unknown units fall back to inches
func (s *CustomerMeasurementService) SetUnit(u measurement.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Unit = u.OrDefault()
}

// SetNotes changes the notes
func (s *CustomerMeasurementService) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Notes = notes
}

// Save stores the form for the selected customer and type
func (s *CustomerMeasurementService) Save(ctx context.Context) error {
	f := s.Form()
	if f.CustomerID == 0 {
		err := shared.NewValidationError("customer_id", "Please select a customer")
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: err.First()})
		return err
	}
	if f.TypeID == 0 {
		err := shared.NewValidationError("type", "Please select a measurement type")
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: err.First()})
		return err
	}

	rec := measurement.Record{Type: f.TypeID, Unit: f.Unit, Notes: f.Notes, Values: f.Values}
	if err := s.api.SaveCustomerMeasurement(ctx, f.CustomerID, rec); err != nil {
		s.fail(ctx, "Failed to save measurement", err)
		return err
	}
	s.logger.Info("Measurement saved", zap.Int("customer_id", f.CustomerID), zap.Int("type_id", f.TypeID))
	s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindSuccess, Text: "Measurement saved successfully"})
	return nil
}

func (s *CustomerMeasurementService) fail(ctx context.Context, text string, err error) {
	s.logger.Warn(text, zap.Error(err))
	s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: text})
}
