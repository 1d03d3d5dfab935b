// Package catalog holds the products sold by the shop.
package catalog

import (
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a product record as served by the admin API. StitchingCost is
// the unit price used on invoices.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	ItemCode      string          `json:"item_code"`
	StitchingCost decimal.Decimal `json:"stitching_cost"`
	Description   string          `json:"description,omitempty"`
	IsFeatured    shared.Flag     `json:"is_featured"`
	IsActive      shared.Flag     `json:"is_active"`
	Image         string          `json:"image,omitempty"`
}

func (p *Product) RecordID() int         { return p.ID }
func (p *Product) Active() bool          { return bool(p.IsActive) }
func (p *Product) SetActive(active bool) { p.IsActive = shared.Flag(active) }

// ImageURL resolves the relative image path against the API host.
// Products without an image return "".
func (p *Product) ImageURL(base string) string {
	if p.Image == "" {
		return ""
	}
	if strings.HasPrefix(p.Image, "http://") || strings.HasPrefix(p.Image, "https://") {
		return p.Image
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p.Image, "/")
}

// MatchesName reports whether the name or item code contains q, ignoring case
func (p *Product) MatchesName(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.ItemCode), q)
}

// Image is a picture attached to a product form
type Image struct {
	Filename string
	Body     io.Reader
}

// ContentType derives the MIME type from the file extension
func (i Image) ContentType() string {
	ext := strings.ToLower(filepath.Ext(i.Filename))
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	if ext == "" {
		return "application/octet-stream"
	}
	return "image/" + strings.TrimPrefix(ext, ".")
}

// ProductInput is the create/update form. Products are submitted as
// multipart forms so an image can ride along.
type ProductInput struct {
	Name          string `json:"name" validate:"required,max=150"`
	ItemCode      string `json:"item_code" validate:"required,max=50"`
	StitchingCost string `json:"stitching_cost" validate:"required,number"`
	Description   string `json:"description" validate:"max=1000"`
	IsFeatured    bool   `json:"is_featured"`
	Image         *Image `json:"-"`
}

// Cost parses the stitching cost, zero when it is not a number
func (in ProductInput) Cost() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(in.StitchingCost))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Apply merges the submitted fields into p. The image is uploaded
// separately and its stored path comes back from the server.
func (in ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.ItemCode = in.ItemCode
	p.StitchingCost = in.Cost()
	p.Description = in.Description
	p.IsFeatured = shared.Flag(in.IsFeatured)
}

// Fields returns the form fields in submission order
func (in ProductInput) Fields() [][2]string {
	return [][2]string{
		{"name", in.Name},
		{"item_code", in.ItemCode},
		{"stitching_cost", in.StitchingCost},
		{"description", in.Description},
		{"is_featured", strconv.Itoa(shared.Flag(in.IsFeatured).Int())},
	}
}

// FilterActive returns the active products, used by the invoice picker
func FilterActive(products []*Product) []*Product {
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}
