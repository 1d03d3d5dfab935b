// Package report holds the read-only figures shown on the dashboard.
package report

import (
	"strconv"

	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DashboardStats are the headline totals
type DashboardStats struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalExpense  decimal.Decimal `json:"total_expense"`
	TotalBranches int             `json:"total_branches"`
	TotalPayments decimal.Decimal `json:"total_payments"`
}

// BranchesLabel renders the branch count as "1 Branch" / "N Branches"
func (s DashboardStats) BranchesLabel() string {
	if s.TotalBranches == 1 {
		return "1 Branch"
	}
	return strconv.Itoa(s.TotalBranches) + " Branches"
}

// Sale is one row of the recent sales table
type Sale struct {
	ID            int             `json:"id"`
	InvoiceNumber shared.Text     `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
}

// Slider is a promotional banner on the home screen
type Slider struct {
	ID    int    `json:"id"`
	Title string `json:"title,omitempty"`
	Image string `json:"image"`
}
