// Package measurement drives the measurement type, attribute and customer
// measurement screens.
package measurement

import (
	"context"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/measurement"
	"github.com/optica/admin/internal/domain/shared"
	"go.uber.org/zap"
)

// Page sizes of the measurement lists
const (
	TypePageSize      = 9
	AttributePageSize = 9
)

// TypeAPI is the remote measurement type collection
type TypeAPI interface {
	MeasurementTypes(ctx context.Context) ([]*measurement.Type, error)
	CreateMeasurementType(ctx context.Context, in measurement.TypeInput) (*measurement.Type, error)
	UpdateMeasurementType(ctx context.Context, id int, in measurement.TypeInput) error
	ToggleMeasurementType(ctx context.Context, id int) error
	TypeAttributes(ctx context.Context, typeID int) ([]measurement.Attribute, error)
}

// TypeService is the measurement type list and form
type TypeService struct {
	*screen.ListController[*measurement.Type, measurement.TypeInput]
	api      TypeAPI
	notifier screen.Notifier
	logger   *zap.Logger
}

// NewTypeService creates the measurement type screen
func NewTypeService(api TypeAPI, notifier screen.Notifier, logger *zap.Logger) *TypeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = screen.NewLogNotifier(logger)
	}
	src := screen.SourceFuncs[*measurement.Type, measurement.TypeInput]{
		ListFn:   api.MeasurementTypes,
		ToggleFn: api.ToggleMeasurementType,
		CreateFn: api.CreateMeasurementType,
		UpdateFn: api.UpdateMeasurementType,
	}
	opts := screen.Options[*measurement.Type, measurement.TypeInput]{
		Name:     "measurement_types",
		PageSize: TypePageSize,
		Apply: func(t *measurement.Type, in measurement.TypeInput) {
			t.Name = in.Name
			t.IsActive = in.IsActive
		},
		Validate: func(in measurement.TypeInput) error {
			if !in.HasSelection() {
				return shared.NewValidationError("selected_attributes", "Please select at least one attribute")
			}
			return nil
		},
		Messages: screen.Messages{
			LoadFailed: "Failed to load measurements",
			Created:    "Measurement created successfully",
			Updated:    "Measurement updated successfully",
			SaveFailed: "Failed to save measurement",
		},
	}
	return &TypeService{
		ListController: screen.NewListController(src, opts, notifier, logger),
		api:            api,
		notifier:       notifier,
		logger:         logger.Named("measurement_types"),
	}
}

// ViewAttributes returns the attributes attached to a type
func (s *TypeService) ViewAttributes(ctx context.Context, typeID int) ([]measurement.Attribute, error) {
	attrs, err := s.api.TypeAttributes(ctx, typeID)
	if err != nil {
		s.logger.Warn("Failed to load type attributes", zap.Int("type_id", typeID), zap.Error(err))
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: "Failed to load attributes"})
		return nil, err
	}
	return attrs, nil
}

// Edit returns the form prefilled from a loaded type. Attached attributes
// are fetched so the checkboxes start ticked.
func (s *TypeService) Edit(ctx context.Context, id int) (measurement.TypeInput, error) {
	t, ok := s.Find(id)
	if !ok {
		return measurement.TypeInput{}, shared.ErrNotFound
	}
	attrs, err := s.ViewAttributes(ctx, id)
	if err != nil {
		return measurement.TypeInput{}, err
	}
	in := measurement.TypeInput{
		Name:               t.Name,
		IsActive:           t.IsActive,
		SelectedAttributes: make(map[int]bool, len(attrs)),
	}
	for _, a := range attrs {
		in.SelectedAttributes[a.ID] = true
	}
	return in, nil
}
