// Package catalog drives the product screens.
package catalog

import (
	"context"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/catalog"
	"go.uber.org/zap"
)

// ProductPageSize is the number of products per grid page
const ProductPageSize = 8

// ProductAPI is the remote product collection
type ProductAPI interface {
	Products(ctx context.Context) ([]*catalog.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id int, in catalog.ProductInput) error
	ToggleProduct(ctx context.Context, id int) error
	BaseURL() string
}

// ProductService is the product grid and form. The list is refetched
// after every save so server-side image paths show up.
type ProductService struct {
	*screen.ListController[*catalog.Product, catalog.ProductInput]
	api ProductAPI
}

// NewProductService creates the product screen
func NewProductService(api ProductAPI, notifier screen.Notifier, logger *zap.Logger) *ProductService {
	src := screen.SourceFuncs[*catalog.Product, catalog.ProductInput]{
		ListFn:   api.Products,
		ToggleFn: api.ToggleProduct,
		CreateFn: api.CreateProduct,
		UpdateFn: api.UpdateProduct,
	}
	opts := screen.Options[*catalog.Product, catalog.ProductInput]{
		Name:            "products",
		PageSize:        ProductPageSize,
		Apply:           func(p *catalog.Product, in catalog.ProductInput) { in.Apply(p) },
		Match:           func(p *catalog.Product, q string) bool { return p.MatchesName(q) },
		ReloadAfterSave: true,
		Messages: screen.Messages{
			LoadFailed:   "Failed to load products",
			Created:      "Product created successfully",
			Updated:      "Product updated successfully",
			SaveFailed:   "Failed to save product",
			Toggled:      "Product status updated",
			ToggleFailed: "Failed to update product status",
		},
	}
	return &ProductService{
		ListController: screen.NewListController(src, opts, notifier, logger),
		api:            api,
	}
}

// ActiveProducts lists the products offered by the invoice picker
func (s *ProductService) ActiveProducts() []*catalog.Product {
	return s.ActiveItems()
}

// Edit returns the form prefilled from a loaded product
func (s *ProductService) Edit(id int) (catalog.ProductInput, bool) {
	p, ok := s.Find(id)
	if !ok {
		return catalog.ProductInput{}, false
	}
	return catalog.ProductInput{
		Name:          p.Name,
		ItemCode:      p.ItemCode,
		StitchingCost: p.StitchingCost.StringFixed(2),
		Description:   p.Description,
		IsFeatured:    bool(p.IsFeatured),
	}, true
}

// ImageURL resolves a product image against the API host
func (s *ProductService) ImageURL(p *catalog.Product) string {
	return p.ImageURL(s.api.BaseURL())
}
