package measurement

import (
	"context"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/measurement"
	"go.uber.org/zap"
)

// defaultCreator is the user id the backend expects on new attributes
const defaultCreator = 1

// AttributeAPI is the remote attribute collection
type AttributeAPI interface {
	MeasurementAttributes(ctx context.Context) ([]*measurement.Attribute, error)
	MeasurementAttribute(ctx context.Context, id int) (*measurement.Attribute, error)
	CreateMeasurementAttribute(ctx context.Context, in measurement.AttributeInput) (*measurement.Attribute, error)
	UpdateMeasurementAttribute(ctx context.Context, id int, in measurement.AttributeInput) error
	ToggleMeasurementAttribute(ctx context.Context, id int) error
}

// AttributeService is the measurement attribute settings list and form
type AttributeService struct {
	*screen.ListController[*measurement.Attribute, measurement.AttributeInput]
	api AttributeAPI
}

// NewAttributeService creates the attribute settings screen
func NewAttributeService(api AttributeAPI, notifier screen.Notifier, logger *zap.Logger) *AttributeService {
	src := screen.SourceFuncs[*measurement.Attribute, measurement.AttributeInput]{
		ListFn:   api.MeasurementAttributes,
		ToggleFn: api.ToggleMeasurementAttribute,
		CreateFn: func(ctx context.Context, in measurement.AttributeInput) (*measurement.Attribute, error) {
			if in.CreatedBy == 0 {
				in.CreatedBy = defaultCreator
			}
			return api.CreateMeasurementAttribute(ctx, in)
		},
		UpdateFn: api.UpdateMeasurementAttribute,
	}
	opts := screen.Options[*measurement.Attribute, measurement.AttributeInput]{
		Name:     "measurement_attributes",
		PageSize: AttributePageSize,
		Apply: func(a *measurement.Attribute, in measurement.AttributeInput) {
			a.Name = in.Name
			a.IsActive = in.IsActive
		},
		Messages: screen.Messages{
			LoadFailed: "Failed to load attributes",
			Created:    "Attribute created successfully",
			Updated:    "Attribute updated successfully",
			SaveFailed: "Failed to save attribute",
		},
	}
	return &AttributeService{
		ListController: screen.NewListController(src, opts, notifier, logger),
		api:            api,
	}
}

// Edit fetches one attribute and returns the prefilled form
func (s *AttributeService) Edit(ctx context.Context, id int) (measurement.AttributeInput, error) {
	a, err := s.api.MeasurementAttribute(ctx, id)
	if err != nil {
		return measurement.AttributeInput{}, err
	}
	return measurement.AttributeInput{Name: a.Name, IsActive: a.IsActive}, nil
}
