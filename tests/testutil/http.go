package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/optica/admin/internal/domain/catalog"
	"github.com/optica/admin/internal/domain/identity"
	"github.com/optica/admin/internal/domain/invoice"
	"github.com/optica/admin/internal/domain/measurement"
	"github.com/optica/admin/internal/domain/partner"
	"github.com/optica/admin/internal/domain/report"
	"github.com/optica/admin/internal/domain/settings"
	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Test credentials accepted by the fake backend
const (
	AdminEmail    = "admin@optica.test"
	AdminPassword = "secret-pass"
	AdminToken    = "test-token"
)

// RecordedRequest is a request the backend received
type RecordedRequest struct {
	Method      string
	Route       string // gin pattern below /api, e.g. /admin/customers/:id/toggle
	Path        string
	Auth        string
	RequestID   string
	ContentType string
	Body        []byte
}

// Backend is an in-memory stand-in for the admin REST API
type Backend struct {
	Server *httptest.Server

	mu          sync.Mutex
	Customers   []*partner.Customer
	Products    []*catalog.Product
	Types       []*measurement.Type
	Attributes  []*measurement.Attribute
	TypeAttrs   map[int][]measurement.Attribute
	Measured    map[[2]int]measurement.Record
	Invoices    []invoice.Submission
	Settings    settings.InvoiceSettings
	Stats       report.DashboardStats
	Sales       []report.Sale
	Sliders     []report.Slider
	loggedOut   bool
	requests    []RecordedRequest
	failures    map[string]*failure
	gates       map[string]chan struct{}
	nextID      int
	lastUpload  *multipartUpload
}

type failure struct {
	status  int
	message string
	times   int
}

type multipartUpload struct {
	Fields   map[string]string
	Filename string
	Size     int64
}

// NewBackend starts a seeded backend; it is closed when the test ends
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	fx := NewFixtures(42)

	b := &Backend{
		Customers:  fx.Customers(25),
		Products:   fx.Products(12),
		Attributes: fx.Attributes(5),
		TypeAttrs:  map[int][]measurement.Attribute{},
		Measured:   map[[2]int]measurement.Record{},
		Settings: settings.InvoiceSettings{
			Prefix: "INV-",
			Index:  "1001",
		},
		Stats: report.DashboardStats{
			TotalSales:    decimal.RequireFromString("15230.50"),
			TotalExpense:  decimal.RequireFromString("4100"),
			TotalBranches: 2,
			TotalPayments: decimal.RequireFromString("11000.25"),
		},
		Sliders:  []report.Slider{{ID: 1, Title: "Summer frames", Image: "/storage/sliders/1.jpg"}},
		failures: map[string]*failure{},
		gates:    map[string]chan struct{}{},
		nextID:   1000,
	}
	b.Sales = fx.Sales(15, b.Customers)
	b.Types = []*measurement.Type{
		{ID: 1, Name: "Frame", IsActive: true},
		{ID: 2, Name: "Lens", IsActive: true},
		{ID: 3, Name: "Legacy", IsActive: false},
	}
	b.TypeAttrs[1] = []measurement.Attribute{
		{ID: 1, DetailID: 11, Name: b.Attributes[0].Name, IsActive: true},
		{ID: 2, DetailID: 12, Name: b.Attributes[1].Name, IsActive: true},
	}
	b.TypeAttrs[2] = []measurement.Attribute{
		{ID: 3, Name: b.Attributes[2].Name, IsActive: true},
	}

	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// BaseURL is the API root to configure clients with
func (b *Backend) BaseURL() string {
	return b.Server.URL + "/api"
}

// Fail makes the next `times` calls to route answer with status
func (b *Backend) Fail(method, route string, status, times int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+route] = &failure{status: status, times: times, message: message}
}

// Hold blocks calls to route until the returned release func is called
func (b *Backend) Hold(method, route string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[method+" "+route] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.gates, method+" "+route)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns the received requests matching method and route; empty
// strings match anything
func (b *Backend) Requests(method, route string) []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []RecordedRequest
	for _, r := range b.requests {
		if (method == "" || r.Method == method) && (route == "" || r.Route == route) {
			out = append(out, r)
		}
	}
	return out
}

// LastUpload returns the fields of the last multipart product form
func (b *Backend) LastUpload() (fields map[string]string, filename string, size int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastUpload == nil {
		return nil, "", 0
	}
	return b.lastUpload.Fields, b.lastUpload.Filename, b.lastUpload.Size
}

// Customer returns the stored customer with id
func (b *Backend) Customer(id int) *partner.Customer {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.Customers {
		if c.ID == id {
			cp := *c
			return &cp
		}
	}
	return nil
}

// LoggedOut reports whether /logout was called
func (b *Backend) LoggedOut() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loggedOut
}

// Edit runs fn while holding the backend lock, for changing seeded state
// once the server is running
func (b *Backend) Edit(fn func(b *Backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// SubmittedInvoices returns the invoices received so far
func (b *Backend) SubmittedInvoices() []invoice.Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.Invoices)
}

func (b *Backend) routes() *gin.Engine {
	r := gin.New()
	r.Use(b.record, b.inject)

	api := r.Group("/api")
	api.POST("/login", b.login)
	api.POST("/register", b.register)

	admin := api.Group("", b.requireToken)
	admin.POST("/logout", func(c *gin.Context) {
		b.mu.Lock()
		b.loggedOut = true
		b.mu.Unlock()
		ok(c, nil)
	})

	admin.GET("/admin/dashboard", func(c *gin.Context) { b.withLock(func() { ok(c, b.Stats) }) })
	admin.GET("/admin/sales", func(c *gin.Context) {
		b.withLock(func() { ok(c, gin.H{"data": b.Sales}) })
	})
	admin.GET("/admin/sliders", func(c *gin.Context) { b.withLock(func() { ok(c, b.Sliders) }) })

	// customers answer with one data wrapper
	admin.GET("/admin/customers", func(c *gin.Context) {
		b.withLock(func() { ok(c, gin.H{"data": b.Customers}) })
	})
	admin.POST("/admin/customers/create", b.createCustomer)
	admin.GET("/admin/customers/:id/view", func(c *gin.Context) {
		b.withLock(func() {
			if cust := findByID(b.Customers, c.Param("id")); cust != nil {
				ok(c, gin.H{"data": cust})
				return
			}
			notFound(c)
		})
	})
	admin.PUT("/admin/customers/update/:id", b.updateCustomer)
	admin.PATCH("/admin/customers/:id/toggle", func(c *gin.Context) { toggle(b, c, func() []*partner.Customer { return b.Customers }) })

	// products answer with a paginator wrapper
	admin.GET("/admin/products", func(c *gin.Context) {
		b.withLock(func() { ok(c, gin.H{"data": gin.H{"current_page": 1, "data": b.Products}}) })
	})
	admin.POST("/admin/products/create", b.saveProduct)
	admin.POST("/admin/products/:id/update", b.saveProduct)
	admin.PATCH("/admin/products/:id/toggle", func(c *gin.Context) { toggle(b, c, func() []*catalog.Product { return b.Products }) })

	admin.GET("/admin/measurements", func(c *gin.Context) { b.withLock(func() { ok(c, b.Types) }) })
	admin.POST("/admin/measurements/create", b.createType)
	admin.PUT("/admin/measurements/:id/update", b.updateType)
	admin.PATCH("/admin/measurements/:id/toggle", func(c *gin.Context) { toggle(b, c, func() []*measurement.Type { return b.Types }) })
	admin.GET("/admin/customers/measurements/:id/attributes", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		b.withLock(func() {
			attrs := b.TypeAttrs[id]
			if attrs == nil {
				attrs = []measurement.Attribute{}
			}
			ok(c, gin.H{"attributes": attrs})
		})
	})

	// attribute settings answer with a bare array
	admin.GET("/admin/settings/measurements", func(c *gin.Context) {
		b.withLock(func() { c.JSON(http.StatusOK, b.Attributes) })
	})
	admin.POST("/admin/settings/measurements/create", b.createAttribute)
	admin.GET("/admin/settings/measurements/:id/show", func(c *gin.Context) {
		b.withLock(func() {
			if a := findByID(b.Attributes, c.Param("id")); a != nil {
				ok(c, a)
				return
			}
			notFound(c)
		})
	})
	admin.PUT("/admin/settings/measurements/:id/update", b.updateAttribute)
	admin.PATCH("/admin/settings/measurements/:id/toggle", func(c *gin.Context) { toggle(b, c, func() []*measurement.Attribute { return b.Attributes }) })

	admin.GET("/admin/customers/:id/measurements/:mid", b.customerMeasurement)
	admin.POST("/admin/customers/:id/measurements/create", b.saveMeasurement)

	admin.POST("/admin/invoices/create", b.createInvoice)
	admin.GET("/admin/settings/invoice", func(c *gin.Context) {
		b.withLock(func() { ok(c, gin.H{"data": b.Settings}) })
	})
	admin.POST("/admin/settings/invoice/create", func(c *gin.Context) {
		var s settings.InvoiceSettings
		if err := c.ShouldBindJSON(&s); err != nil {
			badRequest(c, err)
			return
		}
		b.withLock(func() { b.Settings = s })
		ok(c, s)
	})
	return r
}

func (b *Backend) withLock(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

func (b *Backend) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	route := strings.TrimPrefix(c.FullPath(), "/api")
	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method:      c.Request.Method,
		Route:       route,
		Path:        c.Request.URL.Path,
		Auth:        c.GetHeader("Authorization"),
		RequestID:   c.GetHeader("X-Request-ID"),
		ContentType: c.ContentType(),
		Body:        body,
	})
	gate := b.gates[c.Request.Method+" "+route]
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	c.Next()
}

func (b *Backend) inject(c *gin.Context) {
	key := c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), "/api")
	b.mu.Lock()
	f := b.failures[key]
	if f != nil {
		f.times--
		if f.times <= 0 {
			delete(b.failures, key)
		}
	}
	b.mu.Unlock()
	if f != nil {
		c.AbortWithStatusJSON(f.status, gin.H{"status": false, "message": f.message})
		return
	}
	c.Next()
}

func (b *Backend) requireToken(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+AdminToken {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Unauthenticated."})
		return
	}
	c.Next()
}

func (b *Backend) login(c *gin.Context) {
	var creds identity.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, err)
		return
	}
	if creds.Email != AdminEmail || creds.Password != AdminPassword {
		c.JSON(http.StatusOK, gin.H{"status": false, "message": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Login successful",
		"token":   AdminToken,
		"user":    identity.User{ID: 1, Name: "Admin", Email: AdminEmail, Role: "admin"},
	})
}

func (b *Backend) register(c *gin.Context) {
	var reg identity.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"data": gin.H{
			"token": AdminToken,
			"user":  identity.User{ID: 2, Name: reg.Name, Email: reg.Email},
		},
	})
}

func (b *Backend) createCustomer(c *gin.Context) {
	var in partner.CustomerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	b.mu.Lock()
	b.nextID++
	cust := &partner.Customer{ID: b.nextID, IsActive: true}
	in.Apply(cust)
	b.Customers = append([]*partner.Customer{cust}, b.Customers...)
	b.mu.Unlock()
	ok(c, gin.H{"data": gin.H{"id": cust.ID}})
}

func (b *Backend) updateCustomer(c *gin.Context) {
	var in partner.CustomerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cust := findByID(b.Customers, c.Param("id"))
	if cust == nil {
		notFound(c)
		return
	}
	in.Apply(cust)
	ok(c, cust)
}

func (b *Backend) saveProduct(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
		badRequest(c, err)
		return
	}
	upload := &multipartUpload{Fields: map[string]string{}}
	for k, v := range c.Request.MultipartForm.Value {
		upload.Fields[k] = v[0]
	}
	if fh, err := c.FormFile("image"); err == nil {
		upload.Filename = fh.Filename
		upload.Size = fh.Size
	}
	in := catalog.ProductInput{
		Name:          upload.Fields["name"],
		ItemCode:      upload.Fields["item_code"],
		StitchingCost: upload.Fields["stitching_cost"],
		Description:   upload.Fields["description"],
		IsFeatured:    upload.Fields["is_featured"] == "1",
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastUpload = upload

	if id := c.Param("id"); id != "" {
		p := findByID(b.Products, id)
		if p == nil {
			notFound(c)
			return
		}
		in.Apply(p)
		if upload.Filename != "" {
			p.Image = "/storage/products/" + upload.Filename
		}
		ok(c, p)
		return
	}
	b.nextID++
	p := &catalog.Product{ID: b.nextID, IsActive: true}
	in.Apply(p)
	if upload.Filename != "" {
		p.Image = "/storage/products/" + upload.Filename
	}
	b.Products = append([]*catalog.Product{p}, b.Products...)
	ok(c, gin.H{"data": p})
}

func (b *Backend) createType(c *gin.Context) {
	var in measurement.TypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	t := &measurement.Type{ID: b.nextID, Name: in.Name, IsActive: in.IsActive}
	var attrs []measurement.Attribute
	for _, id := range in.SelectedIDs() {
		if a := findByID(b.Attributes, strconv.Itoa(id)); a != nil {
			attrs = append(attrs, *a)
		}
	}
	b.TypeAttrs[t.ID] = attrs
	b.Types = append([]*measurement.Type{t}, b.Types...)
	ok(c, gin.H{"measurement": t})
}

func (b *Backend) updateType(c *gin.Context) {
	var in measurement.TypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t := findByID(b.Types, c.Param("id"))
	if t == nil {
		notFound(c)
		return
	}
	t.Name = in.Name
	t.IsActive = in.IsActive
	ok(c, t)
}

func (b *Backend) createAttribute(c *gin.Context) {
	var in measurement.AttributeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	a := &measurement.Attribute{ID: b.nextID, Name: in.Name, IsActive: in.IsActive}
	b.Attributes = append([]*measurement.Attribute{a}, b.Attributes...)
	ok(c, gin.H{"data": a})
}

func (b *Backend) updateAttribute(c *gin.Context) {
	var in measurement.AttributeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a := findByID(b.Attributes, c.Param("id"))
	if a == nil {
		notFound(c)
		return
	}
	a.Name = in.Name
	a.IsActive = in.IsActive
	ok(c, a)
}

func (b *Backend) customerMeasurement(c *gin.Context) {
	cid, _ := strconv.Atoi(c.Param("id"))
	mid, _ := strconv.Atoi(c.Param("mid"))
	b.mu.Lock()
	rec, found := b.Measured[[2]int{cid, mid}]
	b.mu.Unlock()
	if !found {
		c.JSON(http.StatusOK, gin.H{"status": false, "message": "No measurement found"})
		return
	}
	ok(c, rec)
}

func (b *Backend) saveMeasurement(c *gin.Context) {
	var body struct {
		Type   int               `json:"type"`
		Unit   measurement.Unit  `json:"unit"`
		Notes  string            `json:"notes"`
		Values map[string]string `json:"userattributes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	cid, _ := strconv.Atoi(c.Param("id"))
	rec := measurement.Record{Type: body.Type, Unit: body.Unit, Notes: body.Notes, Values: measurement.Values{}}
	for k, v := range body.Values {
		id, err := strconv.Atoi(k)
		if err != nil {
			badRequest(c, err)
			return
		}
		rec.Values[id] = v
	}
	b.withLock(func() { b.Measured[[2]int{cid, body.Type}] = rec })
	ok(c, nil)
}

func (b *Backend) createInvoice(c *gin.Context) {
	var sub invoice.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, err)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Invoices = append(b.Invoices, sub)
	b.nextID++
	ok(c, gin.H{"invoice": invoice.Created{
		ID:            b.nextID,
		InvoiceNumber: shared.Text(fmt.Sprintf("%s%d", b.Settings.Prefix, b.Settings.Index.Int()+len(b.Invoices)-1)),
	}})
}

func findByID[T shared.Record](list []T, raw string) T {
	var zero T
	id, err := strconv.Atoi(raw)
	if err != nil {
		return zero
	}
	for _, r := range list {
		if r.RecordID() == id {
			return r
		}
	}
	return zero
}

func toggle[T shared.Record](b *Backend, c *gin.Context, list func() []T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, _ := strconv.Atoi(c.Param("id"))
	for _, r := range list() {
		if r.RecordID() == id {
			r.SetActive(!r.Active())
			ok(c, gin.H{"is_active": shared.Flag(r.Active())})
			return
		}
	}
	notFound(c)
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "OK", "data": data})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Not found"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"status": false, "message": err.Error()})
}

// DecodeBody unmarshals a recorded JSON body
func DecodeBody(t *testing.T, r RecordedRequest, dst any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, dst); err != nil {
		t.Fatalf("decoding %s %s body: %v", r.Method, r.Path, err)
	}
}
