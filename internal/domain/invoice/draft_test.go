package invoice

import (
	"testing"
	"time"

	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func draftWithFrame(t *testing.T) *Draft {
	t.Helper()
	d := NewDraft(decimal.Zero)
	require.True(t, d.AddProduct(7, "Frame", "F-7", dec("100")))
	require.True(t, d.SetQuantity(7, 2))
	return d
}

// ============================================
// Totals
// ============================================

func TestDraft_Totals(t *testing.T) {
	t.Run("one item at 15 percent", func(t *testing.T) {
		d := draftWithFrame(t)

		tot := d.Totals()
		assertDec(t, "200", tot.Subtotal, "subtotal")
		assertDec(t, "30", tot.Tax, "tax")
		assertDec(t, "230", tot.GrandTotal, "grand total")
		assertDec(t, "230", tot.Balance, "balance")
	})

	t.Run("paid above grand total clamps", func(t *testing.T) {
		d := draftWithFrame(t)
		d.SetPaid(dec("250"))

		tot := d.Totals()
		assertDec(t, "230", tot.Paid, "paid")
		assertDec(t, "0", tot.Balance, "balance")
	})

	t.Run("discount clamps to what remains unpaid", func(t *testing.T) {
		d := draftWithFrame(t)
		d.SetPaid(dec("200"))
		d.SetDiscount(dec("50"))

		tot := d.Totals()
		assertDec(t, "30", tot.Discount, "discount")
		assertDec(t, "200", tot.GrandTotal, "grand total")
		assertDec(t, "0", tot.Balance, "balance")
	})

	t.Run("paid clamps against the discounted grand total", func(t *testing.T) {
		d := draftWithFrame(t)
		d.SetDiscount(dec("30"))
		d.SetPaid(dec("230"))

		tot := d.Totals()
		assertDec(t, "200", tot.Paid, "paid")
		assertDec(t, "30", tot.Discount, "discount")
		assertDec(t, "0", tot.Balance, "balance")
	})

	t.Run("negative adjustments become zero", func(t *testing.T) {
		d := draftWithFrame(t)
		d.SetPaid(dec("-5"))
		d.SetDiscount(dec("-1"))

		tot := d.Totals()
		assert.True(t, tot.Paid.IsZero())
		assert.True(t, tot.Discount.IsZero())
	})

	t.Run("removing items re-clamps discount before paid", func(t *testing.T) {
		d := draftWithFrame(t)
		require.True(t, d.AddProduct(9, "Lens", "L-9", dec("50")))
		// gross = 230 + 57.5
		d.SetPaid(dec("200"))
		d.SetDiscount(dec("80"))
		assertDec(t, "80", d.Totals().Discount, "discount before removal")

		require.True(t, d.RemoveProduct(7))
		// gross = 57.5
		tot := d.Totals()
		assertDec(t, "57.5", tot.Paid, "paid")
		assertDec(t, "0", tot.Discount, "discount")
		assertDec(t, "0", tot.Balance, "balance")
	})

	t.Run("mixed tax rates", func(t *testing.T) {
		d := NewDraft(dec("5"))
		d.AddProduct(1, "Case", "C-1", dec("19.99"))
		d.SetQuantity(1, 3)

		tot := d.Totals()
		assertDec(t, "59.97", tot.Subtotal, "subtotal")
		assertDec(t, "2.9985", tot.Tax, "tax")
		assertDec(t, "62.9685", tot.GrandTotal, "grand total")
	})
}

// ============================================
// Line items
// ============================================

func TestDraft_Items(t *testing.T) {
	t.Run("adding the same product twice is a no-op", func(t *testing.T) {
		d := NewDraft(decimal.Zero)
		assert.True(t, d.AddProduct(1, "Frame", "F-1", dec("10")))
		assert.False(t, d.AddProduct(1, "Frame", "F-1", dec("10")))

		items := d.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].Quantity)
		assertDec(t, "15", items[0].TaxRate, "tax rate")
	})

	t.Run("quantity below one is coerced", func(t *testing.T) {
		d := NewDraft(decimal.Zero)
		d.AddProduct(1, "Frame", "F-1", dec("10"))

		for _, qty := range []int{0, -3} {
			d.SetQuantity(1, qty)
			assert.Equal(t, 1, d.Items()[0].Quantity)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		d := NewDraft(decimal.Zero)
		assert.False(t, d.SetQuantity(99, 2))
		assert.False(t, d.RemoveProduct(99))
	})

	t.Run("items returns a copy", func(t *testing.T) {
		d := draftWithFrame(t)
		items := d.Items()
		items[0].Quantity = 50
		assert.Equal(t, 2, d.Items()[0].Quantity)
	})
}

func TestDraft_ValidateAndReset(t *testing.T) {
	d := NewDraft(decimal.Zero)

	err := d.Validate()
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "Please select a customer", err.Error())

	d.SetCustomer(Customer{ID: 3, Name: "Asha Rao"})
	err = d.Validate()
	assert.Equal(t, "Please add at least one product", err.Error())

	d.AddProduct(1, "Frame", "F-1", dec("10"))
	d.SetNotes("urgent")
	d.SetPaid(dec("5"))
	d.SetPayMode(PayModeUPI)
	require.NoError(t, d.Validate())

	d.Reset()
	assert.Empty(t, d.Items())
	assert.Empty(t, d.Notes())
	assert.True(t, d.Totals().Paid.IsZero())
	c, ok := d.Customer()
	assert.True(t, ok)
	assert.Equal(t, 3, c.ID)
	assert.Equal(t, PayModeUPI, d.PayMode())
}

func TestPayMode(t *testing.T) {
	assert.Equal(t, "Bank Transfer", PayModeBankTransfer.Label())
	assert.False(t, PayMode(0).IsValid())
	assert.False(t, PayMode(6).IsValid())
	assert.Len(t, PayModes, 5)

	d := NewDraft(decimal.Zero)
	assert.False(t, d.SetPayMode(PayMode(9)))
	assert.Equal(t, PayModeCash, d.PayMode())
}

func TestParseAmount(t *testing.T) {
	assertDec(t, "12.5", ParseAmount(" 12.5 "), "plain")
	assertDec(t, "0", ParseAmount(""), "empty")
	assertDec(t, "0", ParseAmount("abc"), "garbage")
}

func TestDraft_Submission(t *testing.T) {
	d := draftWithFrame(t)
	_, err := d.Submission(4)
	assert.ErrorIs(t, err, shared.ErrValidation)

	d.SetCustomer(Customer{ID: 12, Name: "Asha Rao"})
	d.SetPaid(dec("100"))
	d.SetNotes("pick up friday")
	d.SetPayMode(PayModeCard)

	sub, err := d.Submission(4)
	require.NoError(t, err)
	assert.Equal(t, 12, sub.CustomerID)
	assert.Equal(t, 4, sub.SalesmanID)
	assert.Equal(t, PayModeCard, sub.PayMode)
	require.Len(t, sub.CartItems, 1)
	assert.Equal(t, CartItem{ProductID: 7, Quantity: 2, Price: dec("100")}, sub.CartItems[0])
	assertDec(t, "100", sub.PaidAmount, "paid")
}

func TestDraft_Preview(t *testing.T) {
	d := NewDraft(decimal.NewFromInt(15))
	d.SetCustomer(Customer{ID: 3, Name: "Amna Khan"})
	d.AddProduct(1, "Frame", "FR-1", dec("100"))
	d.SetQuantity(1, 2)
	d.SetPaid(dec("50"))
	d.SetNotes("rush")

	at := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	p := d.Preview(Created{ID: 9, InvoiceNumber: "INV-1001"}, at)
	d.Reset()

	assert.Equal(t, "INV-1001", p.InvoiceNumber)
	assert.Equal(t, "Amna Khan", p.Customer.Name)
	require.Len(t, p.Items, 1)
	assertDec(t, "230", p.Totals.GrandTotal, "grand")
	assertDec(t, "180", p.Totals.Balance, "balance")
	assert.Equal(t, "rush", p.Notes)
	assert.Equal(t, at, p.IssuedAt)
}
