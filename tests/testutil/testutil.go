// Package testutil provides a fake admin backend and fixtures shared by
// the client, screen and integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/optica/admin/internal/domain/catalog"
	"github.com/optica/admin/internal/domain/measurement"
	"github.com/optica/admin/internal/domain/partner"
	"github.com/optica/admin/internal/domain/report"
	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Context returns a context cancelled when the test ends
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Fixtures generates deterministic records
type Fixtures struct {
	faker *gofakeit.Faker
}

// NewFixtures creates a generator; equal seeds yield equal records
func NewFixtures(seed uint64) *Fixtures {
	return &Fixtures{faker: gofakeit.New(seed)}
}

// Customers returns n customers with ids 1..n, all active
func (f *Fixtures) Customers(n int) []*partner.Customer {
	out := make([]*partner.Customer, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &partner.Customer{
			ID:         i,
			FileNumber: shared.Text(fmt.Sprintf("F-%04d", f.faker.Number(1, 9999))),
			FirstName:  f.faker.FirstName(),
			SecondName: f.faker.LastName(),
			Phone:      f.faker.Phone(),
			Address:    f.faker.Street(),
			Date:       f.faker.Date().Format("2006-01-02"),
			IsActive:   true,
		})
	}
	return out
}

// Products returns n products with ids 1..n, all active
func (f *Fixtures) Products(n int) []*catalog.Product {
	out := make([]*catalog.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &catalog.Product{
			ID:            i,
			Name:          f.faker.ProductName(),
			ItemCode:      fmt.Sprintf("PR-%03d", i),
			StitchingCost: decimal.NewFromFloat(f.faker.Price(10, 500)).Round(2),
			Description:   f.faker.Sentence(5),
			IsFeatured:    shared.Flag(f.faker.Bool()),
			IsActive:      true,
		})
	}
	return out
}

// Attributes returns n measurement attributes with ids 1..n
func (f *Fixtures) Attributes(n int) []*measurement.Attribute {
	out := make([]*measurement.Attribute, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &measurement.Attribute{
			ID:       i,
			Name:     f.faker.Word(),
			IsActive: true,
		})
	}
	return out
}

// Sales returns n recent sales
func (f *Fixtures) Sales(n int, customers []*partner.Customer) []report.Sale {
	out := make([]report.Sale, 0, n)
	for i := 1; i <= n; i++ {
		name := f.faker.Name()
		if len(customers) > 0 {
			name = customers[(i-1)%len(customers)].FullName()
		}
		out = append(out, report.Sale{
			ID:            i,
			InvoiceNumber: shared.Text(fmt.Sprintf("INV-%04d", 1000+i)),
			CustomerName:  name,
			Total:         decimal.NewFromFloat(f.faker.Price(50, 2000)).Round(2),
		})
	}
	return out
}
