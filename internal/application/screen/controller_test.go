package screen

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/optica/admin/internal/domain/partner"
	"github.com/optica/admin/internal/domain/shared"
	"github.com/optica/admin/internal/infrastructure/api"
	"github.com/optica/admin/internal/infrastructure/api/apitest"
	"github.com/optica/admin/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerList = ListController[*partner.Customer, partner.CustomerInput]

func newCustomerList(t *testing.T, opts Options[*partner.Customer, partner.CustomerInput]) (*customerList, *testutil.Backend, *ChannelNotifier) {
	t.Helper()
	b := testutil.NewBackend(t)
	client := apitest.NewClient(t, b.BaseURL(), apitest.StaticToken(testutil.AdminToken))
	src := SourceFuncs[*partner.Customer, partner.CustomerInput]{
		ListFn:   client.Customers,
		ToggleFn: client.ToggleCustomer,
		CreateFn: client.CreateCustomer,
		UpdateFn: client.UpdateCustomer,
	}
	if opts.PageSize == 0 {
		opts.PageSize = 10
	}
	if opts.Apply == nil {
		opts.Apply = func(c *partner.Customer, in partner.CustomerInput) { in.Apply(c) }
	}
	notes := NewChannelNotifier(16)
	return NewListController(src, opts, notes, nil), b, notes
}

func validInput() partner.CustomerInput {
	return partner.CustomerInput{
		FileNumber: "F-9000",
		FirstName:  "Amna",
		Phone:      "0300-1234567",
		Address:    "12 Mall Road",
		Date:       "2026-10-16",
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}

	tests := []struct {
		name      string
		items     []int
		page      int
		wantNum   int
		wantFirst int
		wantLen   int
		prev      bool
		next      bool
	}{
		{name: "first page", items: items, page: 1, wantNum: 1, wantFirst: 1, wantLen: 10, next: true},
		{name: "last partial page", items: items, page: 3, wantNum: 3, wantFirst: 21, wantLen: 5, prev: true},
		{name: "clamped above", items: items, page: 9, wantNum: 3, wantFirst: 21, wantLen: 5, prev: true},
		{name: "clamped below", items: items, page: 0, wantNum: 1, wantFirst: 1, wantLen: 10, next: true},
		{name: "empty list has one page", items: nil, page: 2, wantNum: 1, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.items, tt.page, 10)
			assert.Equal(t, tt.wantNum, p.Number)
			assert.Len(t, p.Items, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, p.Items[0])
			}
			assert.Equal(t, tt.prev, p.HasPrev)
			assert.Equal(t, tt.next, p.HasNext)
		})
	}

	assert.Equal(t, 3, Paginate(items, 1, 10).TotalPages)
	assert.Equal(t, 1, Paginate([]int{}, 1, 10).TotalPages)
}

func TestListController_Load(t *testing.T) {
	t.Run("loads the collection and pages it", func(t *testing.T) {
		ctrl, _, _ := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		require.NoError(t, ctrl.Load(testutil.Context(t)))

		assert.Equal(t, 25, ctrl.Len())
		p := ctrl.Page(3)
		require.Len(t, p.Items, 5)
		assert.Equal(t, 21, p.Items[0].ID)
		assert.Equal(t, 25, p.Items[4].ID)
		assert.False(t, p.HasNext)
		assert.True(t, p.HasPrev)

		assert.Equal(t, 3, ctrl.NextPage().Number)
		assert.Equal(t, 2, ctrl.PrevPage().Number)
	})

	t.Run("failure keeps the previous collection and notifies", func(t *testing.T) {
		ctrl, b, notes := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		b.Fail(http.MethodGet, "/admin/customers", http.StatusInternalServerError, 10, "")
		err := ctrl.Load(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNetworkFailure)
		assert.Equal(t, 25, ctrl.Len())
		assert.False(t, ctrl.Loading())

		got := notes.Drain()
		require.Len(t, got, 1)
		assert.Equal(t, KindError, got[0].Kind)
	})
}

func TestListController_ToggleActive(t *testing.T) {
	t.Run("flip is visible before the server answers", func(t *testing.T) {
		ctrl, b, notes := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		release := b.Hold(http.MethodPatch, "/admin/customers/:id/toggle")
		done := make(chan error, 1)
		go func() { done <- ctrl.ToggleActive(ctx, 5) }()

		assert.Eventually(t, func() bool {
			active, ok := ctrl.IsActive(5)
			return ok && !active
		}, time.Second, 5*time.Millisecond)
		assert.Eventually(t, func() bool {
			return len(b.Requests(http.MethodPatch, "/admin/customers/:id/toggle")) == 1
		}, time.Second, 5*time.Millisecond)

		release()
		require.NoError(t, <-done)
		assert.False(t, bool(b.Customer(5).IsActive))
		assert.Equal(t, []string{"Status updated successfully"}, notes.Texts())
	})

	t.Run("failure keeps the local flip by default", func(t *testing.T) {
		ctrl, b, notes := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		b.Fail(http.MethodPatch, "/admin/customers/:id/toggle", http.StatusInternalServerError, 1, "Toggle refused")
		err := ctrl.ToggleActive(ctx, 3)
		require.Error(t, err)

		active, _ := ctrl.IsActive(3)
		assert.False(t, active)
		assert.Equal(t, []string{"Toggle refused"}, notes.Texts())
	})

	t.Run("failure rolls back when configured", func(t *testing.T) {
		ctrl, b, _ := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{RollbackOnToggleFailure: true})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		b.Fail(http.MethodPatch, "/admin/customers/:id/toggle", http.StatusBadGateway, 1, "")
		require.Error(t, ctrl.ToggleActive(ctx, 3))

		active, _ := ctrl.IsActive(3)
		assert.True(t, active)
	})

	t.Run("unknown id", func(t *testing.T) {
		ctrl, b, _ := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		require.NoError(t, ctrl.Load(testutil.Context(t)))

		err := ctrl.ToggleActive(testutil.Context(t), 999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, b.Requests(http.MethodPatch, ""))
	})
}

func TestListController_Save(t *testing.T) {
	t.Run("create prepends the new record", func(t *testing.T) {
		ctrl, _, notes := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		saved, err := ctrl.Save(ctx, validInput(), 0)
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)
		assert.Equal(t, "Amna", saved.FirstName)

		items := ctrl.Items()
		require.Len(t, items, 26)
		assert.Equal(t, saved.ID, items[0].ID)
		assert.Equal(t, []string{"Record created successfully"}, notes.Texts())
	})

	t.Run("update replaces in place", func(t *testing.T) {
		ctrl, b, _ := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		in := validInput()
		in.FirstName = "Bilal"
		saved, err := ctrl.Save(ctx, in, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, saved.ID)

		items := ctrl.Items()
		assert.Len(t, items, 25)
		assert.Equal(t, "Bilal", items[6].FirstName)
		assert.Equal(t, "Bilal", b.Customer(7).FirstName)
	})

	t.Run("update of a record not loaded locally reloads it", func(t *testing.T) {
		ctrl, b, notes := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		ctx := testutil.Context(t)

		in := validInput()
		in.FirstName = "Bilal"
		saved, err := ctrl.Save(ctx, in, 7)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, 7, saved.ID)
		assert.Equal(t, "Bilal", saved.FirstName)
		assert.Equal(t, 25, ctrl.Len())
		assert.Len(t, b.Requests(http.MethodGet, "/admin/customers"), 1)
		assert.Equal(t, []string{"Record updated successfully"}, notes.Texts())
	})

	t.Run("update of a record missing after reload returns no record", func(t *testing.T) {
		var updated int
		src := SourceFuncs[*partner.Customer, partner.CustomerInput]{
			ListFn: func(context.Context) ([]*partner.Customer, error) { return nil, nil },
			UpdateFn: func(_ context.Context, id int, _ partner.CustomerInput) error {
				updated = id
				return nil
			},
		}
		notes := NewChannelNotifier(4)
		ctrl := NewListController(src, Options[*partner.Customer, partner.CustomerInput]{}, notes, nil)

		var (
			saved *partner.Customer
			err   error
		)
		require.NotPanics(t, func() {
			saved, err = ctrl.Save(testutil.Context(t), validInput(), 42)
		})
		require.NoError(t, err)
		assert.Nil(t, saved)
		assert.Equal(t, 42, updated)
		assert.Equal(t, []string{"Record updated successfully"}, notes.Texts())
	})

	t.Run("validation failure sends nothing", func(t *testing.T) {
		ctrl, b, notes := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		in := validInput()
		in.FirstName = ""
		_, err := ctrl.Save(ctx, in, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)

		var ve *shared.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "first_name")
		assert.Empty(t, b.Requests(http.MethodPost, "/admin/customers/create"))
		assert.Len(t, notes.Drain(), 1)
	})

	t.Run("extra validation runs after tags", func(t *testing.T) {
		ctrl, b, _ := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{
			Validate: func(in partner.CustomerInput) error {
				return shared.NewValidationError("phone_number_1", "Phone already used")
			},
		})
		_, err := ctrl.Save(testutil.Context(t), validInput(), 0)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Empty(t, b.Requests(http.MethodPost, ""))
	})

	t.Run("remote failure keeps the list and shows the server message", func(t *testing.T) {
		ctrl, b, notes := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		b.Fail(http.MethodPost, "/admin/customers/create", http.StatusUnprocessableEntity, 1, "The file number has already been taken.")
		_, err := ctrl.Save(ctx, validInput(), 0)
		require.Error(t, err)
		assert.Equal(t, "The file number has already been taken.", api.ServerMessage(err))
		assert.Equal(t, 25, ctrl.Len())
		assert.Equal(t, []string{"The file number has already been taken."}, notes.Texts())
	})

	t.Run("reload after save", func(t *testing.T) {
		ctrl, b, _ := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{ReloadAfterSave: true})
		ctx := testutil.Context(t)
		require.NoError(t, ctrl.Load(ctx))

		_, err := ctrl.Save(ctx, validInput(), 0)
		require.NoError(t, err)
		assert.Len(t, b.Requests(http.MethodGet, "/admin/customers"), 2)
		assert.Equal(t, 26, ctrl.Len())
	})
}

func TestListController_Search(t *testing.T) {
	ctrl, _, _ := newCustomerList(t, Options[*partner.Customer, partner.CustomerInput]{
		Match: func(c *partner.Customer, q string) bool { return c.MatchesName(q) },
	})
	require.NoError(t, ctrl.Load(testutil.Context(t)))

	first, _ := ctrl.Find(1)
	p := ctrl.Search(first.FirstName)
	require.NotEmpty(t, p.Items)
	for _, c := range p.Items {
		assert.True(t, c.MatchesName(first.FirstName))
	}

	assert.Equal(t, 25, ctrl.Search("").Total)
}

func TestChannelNotifier_DropsOldest(t *testing.T) {
	n := NewChannelNotifier(2)
	ctx := context.Background()
	n.Notify(ctx, Notification{Kind: KindInfo, Text: "a"})
	n.Notify(ctx, Notification{Kind: KindInfo, Text: "b"})
	n.Notify(ctx, Notification{Kind: KindInfo, Text: "c"})

	assert.Equal(t, []string{"b", "c"}, n.Texts())
	assert.Empty(t, n.Drain())
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	err := v.Validate(partner.CustomerInput{Date: "16/10/2026"})
	var ve *shared.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "file_number: This field is required", ve.Fields["file_number"])
	assert.Contains(t, ve.Fields["date"], "2006-01-02")

	assert.NoError(t, v.Validate(validInput()))
}
