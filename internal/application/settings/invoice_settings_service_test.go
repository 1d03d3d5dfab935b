package settings

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

func TestInvoiceSettingsService(t *testing.T) {
	b := testutil.NewBackend(t)
	client := apitest.NewClient(t, b.BaseURL(), apitest.StaticToken(testutil.AdminToken))
	notes := screen.NewChannelNotifier(4)
	svc := NewInvoiceSettingsService(client, notes, nil)
	ctx := testutil.Context(t)

	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", got.NextNumber())

	got.Prefix = "OPT-"
	got.Index = "2000"
	got.SandboxURL = "https://sandbox.example.test/api"
	require.NoError(t, svc.Save(ctx, got))
	assert.Equal(t, "OPT-2000", svc.Current().NextNumber())
	assert.Equal(t, []string{"Invoice settings saved successfully"}, notes.Texts())

	reloaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPT-", reloaded.Prefix)

	t.Run("rejects a non-numeric index", func(t *testing.T) {
		bad := reloaded
		bad.Index = "abc"
		err := svc.Save(ctx, bad)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Len(t, b.Requests(http.MethodPost, "/admin/settings/invoice/create"), 1)
		notes.Drain()
	})

	t.Run("load failure keeps the form", func(t *testing.T) {
		b.Fail(http.MethodGet, "/admin/settings/invoice", http.StatusInternalServerError, 10, "")
		kept, err := svc.Load(ctx)
		require.Error(t, err)
		assert.Equal(t, "OPT-", kept.Prefix)
	})
}
