package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/optica/admin/internal/domain/catalog"
)

// Products returns every product
func (c *Client) Products(ctx context.Context) ([]*catalog.Product, error) {
	return getList[*catalog.Product](ctx, c, "/admin/products")
}

// CreateProduct uploads a new product with its optional image
func (c *Client) CreateProduct(ctx context.Context, in catalog.ProductInput) (*catalog.Product, error) {
	req, err := productRequest("/admin/products/create", in)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	p := &catalog.Product{IsActive: true}
	in.Apply(p)
	if err := decodeObject(env.Data, p, "data"); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct re-submits the product form. The backend only accepts
// multipart bodies on POST, so updates are POSTed too.
func (c *Client) UpdateProduct(ctx context.Context, id int, in catalog.ProductInput) error {
	req, err := productRequest(fmt.Sprintf("/admin/products/%d/update", id), in)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}

// ToggleProduct flips the active flag on the server
func (c *Client) ToggleProduct(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPatch, fmt.Sprintf("/admin/products/%d/toggle", id))
}

func productRequest(path string, in catalog.ProductInput) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range in.Fields() {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return request{}, fmt.Errorf("writing field %s: %w", f[0], err)
		}
	}
	if in.Image != nil && in.Image.Body != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(in.Image.Filename)))
		h.Set("Content-Type", in.Image.ContentType())
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("creating image part: %w", err)
		}
		if _, err := io.Copy(part, in.Image.Body); err != nil {
			return request{}, fmt.Errorf("copying image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return request{}, err
	}
	return request{
		method:      http.MethodPost,
		path:        path,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, nil
}
