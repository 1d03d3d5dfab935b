package screen

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/optica/admin/internal/domain/shared"
	"go.uber.org/zap"
)

// Source is the remote collection behind a list screen
type Source[T shared.Record, In any] interface {
	List(ctx context.Context) ([]T, error)
	Toggle(ctx context.Context, id int) error
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int, in In) error
}

// SourceFuncs adapts plain functions to Source
type SourceFuncs[T shared.Record, In any] struct {
	ListFn   func(ctx context.Context) ([]T, error)
	ToggleFn func(ctx context.Context, id int) error
	CreateFn func(ctx context.Context, in In) (T, error)
	UpdateFn func(ctx context.Context, id int, in In) error
}

func (s SourceFuncs[T, In]) List(ctx context.Context) ([]T, error) { return s.ListFn(ctx) }

func (s SourceFuncs[T, In]) Toggle(ctx context.Context, id int) error { return s.ToggleFn(ctx, id) }

func (s SourceFuncs[T, In]) Create(ctx context.Context, in In) (T, error) { return s.CreateFn(ctx, in) }

func (s SourceFuncs[T, In]) Update(ctx context.Context, id int, in In) error {
	return s.UpdateFn(ctx, id, in)
}

// Messages are the notification texts of one screen
type Messages struct {
	LoadFailed   string
	Created      string
	Updated      string
	SaveFailed   string
	Toggled      string
	ToggleFailed string
}

func (m Messages) withDefaults() Messages {
	if m.LoadFailed == "" {
		m.LoadFailed = "Failed to load records"
	}
	if m.Created == "" {
		m.Created = "Record created successfully"
	}
	if m.Updated == "" {
		m.Updated = "Record updated successfully"
	}
	if m.SaveFailed == "" {
		m.SaveFailed = "Failed to save record"
	}
	if m.Toggled == "" {
		m.Toggled = "Status updated successfully"
	}
	if m.ToggleFailed == "" {
		m.ToggleFailed = "Failed to update status"
	}
	return m
}

// Options configure a ListController
type Options[T shared.Record, In any] struct {
	Name     string
	PageSize int
	// Apply writes a saved input into the matching local record
	Apply func(item T, in In)
	// Match filters the list by the search query
	Match func(item T, query string) bool
	// Validate runs after the struct tags pass
	Validate func(in In) error
	// ReloadAfterSave refetches the collection after a successful save
	ReloadAfterSave bool
	// RollbackOnToggleFailure restores the flag when the remote toggle fails
	RollbackOnToggleFailure bool
	Messages                Messages
}

// ListController holds the state of one entity list screen: the loaded
// collection, the current page and search query. It is safe for concurrent
// use; the records it returns must be treated as read-only.
type ListController[T shared.Record, In any] struct {
	source    Source[T, In]
	opts      Options[T, In]
	validator *Validator
	notifier  Notifier
	logger    *zap.Logger

	mu      sync.RWMutex
	items   []T
	page    int
	query   string
	loading bool
}

// NewListController creates a controller over source
func NewListController[T shared.Record, In any](
	source Source[T, In],
	opts Options[T, In],
	notifier Notifier,
	logger *zap.Logger,
) *ListController[T, In] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	if opts.Name == "" {
		opts.Name = "list"
	}
	opts.Messages = opts.Messages.withDefaults()
	return &ListController[T, In]{
		source:    source,
		opts:      opts,
		validator: NewValidator(),
		notifier:  notifier,
		logger:    logger.Named(opts.Name),
		page:      1,
	}
}

// Load fetches the whole collection. On failure the previous collection
// is kept and the user is notified.
func (c *ListController[T, In]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	items, err := c.source.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.logger.Warn("Load failed", zap.Error(err))
		c.notify(ctx, KindError, ErrorText(err, c.opts.Messages.LoadFailed))
		return err
	}
	c.items = items
	c.page = clampPage(c.page, c.totalPagesLocked())
	c.logger.Debug("Loaded", zap.Int("count", len(items)))
	return nil
}

// Loading reports whether a fetch is in flight
func (c *ListController[T, In]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Items returns the loaded collection in display order
func (c *ListController[T, In]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Len returns the size of the loaded collection
func (c *ListController[T, In]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Find returns the record with the given id
func (c *ListController[T, In]) Find(id int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// IsActive reads the active flag of a record under the controller lock
func (c *ListController[T, In]) IsActive(id int) (active, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i].Active(), true
	}
	return false, false
}

// Filter returns the records for which keep is true
func (c *ListController[T, In]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// ActiveItems returns the records whose active flag is set
func (c *ListController[T, In]) ActiveItems() []T {
	return c.Filter(func(item T) bool { return item.Active() })
}

// Search sets the query used to filter pages and resets to the first page
func (c *ListController[T, In]) Search(query string) Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = query
	c.page = 1
	return c.pageLocked()
}

// ToggleActive flips the record's active flag locally, so the change is
// visible before the remote call returns, then asks the server to toggle.
func (c *ListController[T, In]) ToggleActive(ctx context.Context, id int) error {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return shared.ErrNotFound
	}
	item := c.items[i]
	prev := item.Active()
	item.SetActive(!prev)
	c.mu.Unlock()

	if err := c.source.Toggle(ctx, id); err != nil {
		c.logger.Warn("Toggle failed", zap.Int("id", id), zap.Error(err))
		if c.opts.RollbackOnToggleFailure {
			c.mu.Lock()
			item.SetActive(prev)
			c.mu.Unlock()
		}
		c.notify(ctx, KindError, ErrorText(err, c.opts.Messages.ToggleFailed))
		return err
	}
	c.notify(ctx, KindSuccess, c.opts.Messages.Toggled)
	return nil
}

// Page moves to page n (clamped) and returns it
func (c *ListController[T, In]) Page(n int) Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = n
	return c.pageLocked()
}

// Current returns the current page
func (c *ListController[T, In]) Current() Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageLocked()
}

// NextPage advances one page; a no-op on the last page
func (c *ListController[T, In]) NextPage() Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page++
	return c.pageLocked()
}

// PrevPage goes back one page; a no-op on the first page
func (c *ListController[T, In]) PrevPage() Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page--
	return c.pageLocked()
}

// Save validates in and creates a record (editID 0) or updates the record
// editID. Nothing is sent when validation fails. A created record is
// prepended; an updated one is rewritten in place, or reloaded when it is
// not in the local list. The returned record is the zero value when the
// reload does not contain it either.
func (c *ListController[T, In]) Save(ctx context.Context, in In, editID int) (T, error) {
	var zero T
	if err := c.validate(in); err != nil {
		c.notify(ctx, KindError, ErrorText(err, shared.ErrValidation.Message))
		return zero, err
	}

	var (
		saved T
		err   error
		text  string
	)
	if editID == 0 {
		saved, err = c.source.Create(ctx, in)
		text = c.opts.Messages.Created
	} else {
		err = c.source.Update(ctx, editID, in)
		text = c.opts.Messages.Updated
	}
	if err != nil {
		c.logger.Warn("Save failed", zap.Int("edit_id", editID), zap.Error(err))
		c.notify(ctx, KindError, ErrorText(err, c.opts.Messages.SaveFailed))
		return zero, err
	}

	id := editID
	local := true
	c.mu.Lock()
	if editID == 0 {
		c.items = append([]T{saved}, c.items...)
		id = saved.RecordID()
	} else if i := c.indexLocked(editID); i >= 0 {
		saved = c.items[i]
		if c.opts.Apply != nil {
			c.opts.Apply(saved, in)
		}
	} else {
		local = false
	}
	c.mu.Unlock()

	c.logger.Info("Saved", zap.Int("id", id), zap.Bool("created", editID == 0))
	c.notify(ctx, KindSuccess, text)

	// An updated record missing from the local list is picked up by a reload.
	if c.opts.ReloadAfterSave || !local {
		// The save already succeeded; a failed reload only notifies.
		_ = c.Load(ctx)
		if fresh, ok := c.Find(id); ok {
			saved = fresh
		}
	}
	return saved, nil
}

func (c *ListController[T, In]) validate(in In) error {
	if err := c.validator.Validate(in); err != nil {
		return err
	}
	if c.opts.Validate != nil {
		return c.opts.Validate(in)
	}
	return nil
}

func (c *ListController[T, In]) notify(ctx context.Context, kind Kind, text string) {
	c.notifier.Notify(ctx, Notification{Kind: kind, Text: text})
}

func (c *ListController[T, In]) indexLocked(id int) int {
	return slices.IndexFunc(c.items, func(item T) bool { return item.RecordID() == id })
}

func (c *ListController[T, In]) visibleLocked() []T {
	if c.query == "" || c.opts.Match == nil {
		return c.items
	}
	var out []T
	for _, item := range c.items {
		if c.opts.Match(item, c.query) {
			out = append(out, item)
		}
	}
	return out
}

func (c *ListController[T, In]) totalPagesLocked() int {
	return Paginate(c.visibleLocked(), 1, c.opts.PageSize).TotalPages
}

func (c *ListController[T, In]) pageLocked() Page[T] {
	p := Paginate(c.visibleLocked(), c.page, c.opts.PageSize)
	c.page = p.Number
	return p
}

// ErrorText prefers a message the server sent, then a validation message,
// then fallback.
func ErrorText(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		return ve.First()
	}
	return fallback
}
