package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Decode(t *testing.T) {
	raw := `{"id":8,"name":"Aviator","item_code":"AV-1","stitching_cost":"149.50",
		"is_featured":0,"is_active":true,"image":"/storage/products/av.png"}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "149.5", p.StitchingCost.String())
	assert.True(t, p.Active())
	assert.False(t, bool(p.IsFeatured))
	assert.Equal(t, "https://optical.aasols.com/storage/products/av.png", p.ImageURL("https://optical.aasols.com/"))
}

func TestProduct_ImageURL(t *testing.T) {
	assert.Empty(t, (&Product{}).ImageURL("https://x"))
	assert.Equal(t, "https://cdn/a.jpg", (&Product{Image: "https://cdn/a.jpg"}).ImageURL("https://x"))
}

func TestProduct_MatchesName(t *testing.T) {
	p := &Product{Name: "Round Frame", ItemCode: "RF-22"}
	assert.True(t, p.MatchesName("frame"))
	assert.True(t, p.MatchesName("rf-2"))
	assert.False(t, p.MatchesName("lens"))
}

func TestProductInput_Fields(t *testing.T) {
	in := ProductInput{Name: "Lens", ItemCode: "L1", StitchingCost: "20", IsFeatured: true}
	fields := in.Fields()
	require.Len(t, fields, 5)
	assert.Equal(t, [2]string{"is_featured", "1"}, fields[4])

	in.IsFeatured = false
	assert.Equal(t, "0", in.Fields()[4][1])
}

func TestImage_ContentType(t *testing.T) {
	tests := map[string]string{
		"photo.png":  "image/png",
		"photo.JPG":  "image/jpeg",
		"photo.heic": "image/heic",
		"photo":      "application/octet-stream",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, Image{Filename: name}.ContentType())
		})
	}
}

func TestProductInput_Apply(t *testing.T) {
	p := &Product{ID: 2, IsActive: true, Image: "/img/a.png"}
	ProductInput{Name: "Lens", ItemCode: "L1", StitchingCost: " 12.75 ", IsFeatured: true}.Apply(p)

	assert.Equal(t, "Lens", p.Name)
	assert.Equal(t, "12.75", p.StitchingCost.String())
	assert.True(t, bool(p.IsFeatured))
	assert.Equal(t, "/img/a.png", p.Image)

	assert.True(t, ProductInput{StitchingCost: "abc"}.Cost().IsZero())
}
