package report

import (
	"net/http"
	"testing"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/shared"
	"github.com/optica/admin/internal/infrastructure/api/apitest"
	"github.com/optica/admin/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Load(t *testing.T) {
	b := testutil.NewBackend(t)
	client := apitest.NewClient(t, b.BaseURL(), apitest.StaticToken(testutil.AdminToken))
	svc := NewDashboardService(client, screen.NewChannelNotifier(4), nil)
	require.NoError(t, svc.Load(testutil.Context(t)))

	stats := svc.Stats()
	assert.Equal(t, "15230.50", stats.TotalSales.StringFixed(2))
	assert.Equal(t, "2 Branches", stats.BranchesLabel())
	assert.Len(t, svc.Sliders(), 1)

	p := svc.SalesPage(1)
	assert.Equal(t, 2, p.TotalPages)
	assert.Len(t, p.Items, SalesPageSize)
	assert.Len(t, svc.NextSales().Items, 5)
	assert.Equal(t, 2, svc.NextSales().Number)
	assert.Equal(t, 1, svc.PrevSales().Number)
}

func TestDashboardService_PartialFailure(t *testing.T) {
	b := testutil.NewBackend(t)
	client := apitest.NewClient(t, b.BaseURL(), apitest.StaticToken(testutil.AdminToken))
	notes := screen.NewChannelNotifier(4)
	svc := NewDashboardService(client, notes, nil)
	ctx := testutil.Context(t)
	require.NoError(t, svc.Load(ctx))

	b.Fail(http.MethodGet, "/admin/sales", http.StatusInternalServerError, 10, "")
	err := svc.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNetworkFailure)

	assert.Equal(t, 15, svc.SalesPage(1).Total)
	assert.Equal(t, []string{"Failed to load sales"}, notes.Texts())
}
