package catalog

import (
	"net/http"
	"strings"
	"testing"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/catalog"
	"github.com/optica/admin/internal/domain/shared"
	"github.com/optica/admin/internal/infrastructure/api/apitest"
	"github.com/optica/admin/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*ProductService, *testutil.Backend) {
	t.Helper()
	b := testutil.NewBackend(t)
	client := apitest.NewClient(t, b.BaseURL(), apitest.StaticToken(testutil.AdminToken))
	svc := NewProductService(client, screen.NewChannelNotifier(8), nil)
	require.NoError(t, svc.Load(testutil.Context(t)))
	return svc, b
}

func TestProductService_Paging(t *testing.T) {
	svc, _ := setup(t)

	p := svc.Page(1)
	assert.Equal(t, 2, p.TotalPages)
	assert.Len(t, p.Items, ProductPageSize)
	assert.Len(t, svc.NextPage().Items, 4)
	assert.False(t, svc.Current().HasNext)
}

func TestProductService_CreateWithImage(t *testing.T) {
	svc, b := setup(t)
	ctx := testutil.Context(t)

	saved, err := svc.Save(ctx, catalog.ProductInput{
		Name:          "Aviator Gold",
		ItemCode:      "AV-01",
		StitchingCost: "1250.50",
		IsFeatured:    true,
		Image:         &catalog.Image{Filename: "aviator.png", Body: strings.NewReader("png-bytes")},
	}, 0)
	require.NoError(t, err)

	fields, filename, size := b.LastUpload()
	assert.Equal(t, "Aviator Gold", fields["name"])
	assert.Equal(t, "1", fields["is_featured"])
	assert.Equal(t, "aviator.png", filename)
	assert.Equal(t, int64(len("png-bytes")), size)

	// reloaded from the server, so the stored image path is known
	assert.Len(t, b.Requests(http.MethodGet, "/admin/products"), 2)
	assert.Equal(t, "/storage/products/aviator.png", saved.Image)
	assert.True(t, strings.HasSuffix(svc.ImageURL(saved), "/storage/products/aviator.png"))
	assert.Equal(t, 13, svc.Len())
}

func TestProductService_EditAndUpdate(t *testing.T) {
	svc, b := setup(t)
	ctx := testutil.Context(t)

	in, ok := svc.Edit(3)
	require.True(t, ok)
	in.StitchingCost = "99.99"
	_, err := svc.Save(ctx, in, 3)
	require.NoError(t, err)

	assert.Len(t, b.Requests(http.MethodPost, "/admin/products/:id/update"), 1)
	p, _ := svc.Find(3)
	assert.Equal(t, "99.99", p.StitchingCost.StringFixed(2))

	_, ok = svc.Edit(999)
	assert.False(t, ok)
}

func TestProductService_InvalidCost(t *testing.T) {
	svc, b := setup(t)

	_, err := svc.Save(testutil.Context(t), catalog.ProductInput{Name: "X", ItemCode: "X-1", StitchingCost: "abc"}, 0)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, b.Requests(http.MethodPost, "/admin/products/create"))
}

func TestProductService_SearchAndActive(t *testing.T) {
	svc, _ := setup(t)
	ctx := testutil.Context(t)

	p := svc.Search("PR-011")
	require.Len(t, p.Items, 1)
	assert.Equal(t, 11, p.Items[0].ID)

	require.NoError(t, svc.ToggleActive(ctx, 11))
	assert.Len(t, svc.ActiveProducts(), 11)
}
