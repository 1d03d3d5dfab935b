package printing

import (
	"context"
	"fmt"
	"strings"

	"github.com/optica/admin/internal/domain/invoice"
	"github.com/optica/admin/internal/infrastructure/storage"
	"go.uber.org/zap"
)

const exportPrefix = "invoices/"

// Exporter renders invoice previews and archives them in a store
type Exporter struct {
	tmpl   *InvoiceTemplate
	pdf    PDFRenderer
	store  storage.Store
	logger *zap.Logger
}

// ExporterOption configures an Exporter
type ExporterOption func(*Exporter)

// WithPDF converts previews to PDF before archiving. Without it the HTML
// document is archived.
func WithPDF(r PDFRenderer) ExporterOption {
	return func(e *Exporter) { e.pdf = r }
}

// NewExporter creates an exporter writing to store
func NewExporter(tmpl *InvoiceTemplate, store storage.Store, logger *zap.Logger, opts ...ExporterOption) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Exporter{tmpl: tmpl, store: store, logger: logger.Named("export")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders p and returns the archived location. A failed PDF
// conversion falls back to archiving the HTML.
func (e *Exporter) Export(ctx context.Context, p invoice.Preview) (string, error) {
	doc, err := e.tmpl.Render(p)
	if err != nil {
		return "", err
	}

	base := exportPrefix + exportName(p)
	key, data, contentType := base+".html", []byte(doc), "text/html; charset=utf-8"

	if e.pdf != nil {
		res, err := e.pdf.Render(ctx, &RenderRequest{HTML: doc, Title: "Invoice " + p.InvoiceNumber})
		switch {
		case err == nil:
			key, data, contentType = base+".pdf", res.PDFData, "application/pdf"
		case ctx.Err() != nil:
			return "", err
		default:
			e.logger.Warn("pdf conversion failed, archiving html",
				zap.String("invoice", p.InvoiceNumber), zap.Error(err))
		}
	}

	loc, err := e.store.Put(ctx, key, data, contentType)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "archiving "+key, err)
	}
	e.logger.Info("invoice exported",
		zap.String("invoice", p.InvoiceNumber),
		zap.String("location", loc))
	return loc, nil
}

// exportName keeps letters, digits, dash and underscore of the invoice number
func exportName(p invoice.Preview) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(p.InvoiceNumber))
	if strings.Trim(name, "-") == "" {
		return fmt.Sprintf("invoice-%d", p.ID)
	}
	return name
}
