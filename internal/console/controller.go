package console

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

// Definition describes one managed resource.
type Definition[T Record, D any] struct {
	// Name is the route segment and the label used in messages.
	Name  string
	Table string
	Order models.Order
	// Defaults returns the blank form.
	Defaults func() D
	// Seed copies a record into a form.
	Seed func(T) D
	// Media enables file attachment. AttachMedia stores the uploaded reference on the draft.
	Media                *MediaTarget
	AttachMedia          func(*D, models.MediaReference)
	RequireMediaOnCreate bool
	Match                func(T, Filter) bool
	// SpliceOnInsert prepends the inserted row instead of re-fetching the list.
	SpliceOnInsert bool
	// Realtime subscribes the controller to change notifications of Table.
	Realtime bool
}

// Snapshot is a consistent copy of the controller state.
type Snapshot[T Record, D any] struct {
	Records    []T    `json:"records"`
	Loading    bool   `json:"loading"`
	Submitting bool   `json:"submitting"`
	ListError  string `json:"list_error,omitempty"`
	FormError  string `json:"form_error,omitempty"`
	Modal      Modal  `json:"modal"`
	Draft      D      `json:"draft"`
}

// Controller holds the list and form state of one resource.
type Controller[T Record, D any] struct {
	def      Definition[T, D]
	store    Store[T, D]
	uploader *Uploader
	validate *validator.Validate
	logger   *zap.Logger

	mu         sync.Mutex
	records    []T
	loading    int
	submitting int
	listErr    string
	formErr    string
	modal      Modal
	draft      D
}

// NewController wires a resource definition to its store.
func NewController[T Record, D any](def Definition[T, D], store Store[T, D], uploader *Uploader, validate *validator.Validate, logger *zap.Logger) *Controller[T, D] {
	if def.Defaults == nil {
		def.Defaults = func() D {
			var d D
			return d
		}
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller[T, D]{
		def:      def,
		store:    store,
		uploader: uploader,
		validate: validate,
		logger:   logger.With(zap.String("resource", def.Name)),
		modal:    closedModal(),
		draft:    def.Defaults(),
	}
}

// Name returns the resource name.
func (c *Controller[T, D]) Name() string { return c.def.Name }

// Table returns the backing table.
func (c *Controller[T, D]) Table() string { return c.def.Table }

// Realtime reports whether the resource follows change notifications.
func (c *Controller[T, D]) Realtime() bool { return c.def.Realtime }

// List re-reads the whole table and replaces the held list. A failed read keeps
// the previous list and records the message.
func (c *Controller[T, D]) List(ctx context.Context) []T {
	_ = c.load(ctx)
	return c.Records()
}

// Refresh is List without the result.
func (c *Controller[T, D]) Refresh(ctx context.Context) error {
	return c.load(ctx)
}

func (c *Controller[T, D]) load(ctx context.Context) error {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()

	rows, err := c.store.List(ctx, c.def.Order)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading--
	if err != nil {
		c.listErr = "Failed to load " + c.def.Name + ": " + err.Error()
		c.logger.Warn("list failed", zap.Error(err))
		return appErrors.WrapAs(appErrors.ErrRead, err, c.listErr)
	}
	if rows == nil {
		rows = []T{}
	}
	c.records = rows
	c.listErr = ""
	return nil
}

// Records returns a copy of the held list.
func (c *Controller[T, D]) Records() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordsLocked()
}

func (c *Controller[T, D]) recordsLocked() []T {
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out
}

// Filter applies f to the held list without contacting the store.
func (c *Controller[T, D]) Filter(f Filter) []T {
	records := c.Records()
	if c.def.Match == nil || f.Empty() {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if c.def.Match(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// Open shows the form: seeded from the record in edit mode, blank in create mode.
func (c *Controller[T, D]) Open(seed *T) D {
	if seed != nil {
		return c.OpenEdit(*seed)
	}
	return c.OpenCreate()
}

// OpenCreate shows a blank form, optionally prefilled.
func (c *Controller[T, D]) OpenCreate(prefill ...func(*D)) D {
	draft := c.def.Defaults()
	for _, fn := range prefill {
		fn(&draft)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = creatingModal()
	c.draft = draft
	c.formErr = ""
	return draft
}

// OpenEdit shows the form seeded from record.
func (c *Controller[T, D]) OpenEdit(record T) D {
	draft := c.seed(record)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = editingModal(record.RecordID())
	c.draft = draft
	c.formErr = ""
	return draft
}

// Edit opens the form for id, reading the row when it is not held locally.
func (c *Controller[T, D]) Edit(ctx context.Context, id string) (D, error) {
	record, err := c.find(ctx, id)
	if err != nil {
		var zero D
		return zero, err
	}
	return c.OpenEdit(record), nil
}

// Draft returns the current form and modal.
func (c *Controller[T, D]) Draft() (D, Modal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft, c.modal
}

// Cancel closes the form and restores the defaults.
func (c *Controller[T, D]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = closedModal()
	c.draft = c.def.Defaults()
	c.formErr = ""
}

// Submit validates the draft, uploads the optional file and writes the row.
// On any failure the modal stays open with the draft intact.
func (c *Controller[T, D]) Submit(ctx context.Context, draft D, file *Upload) (T, error) {
	var zero T

	c.mu.Lock()
	modal := c.modal
	if !modal.Open() {
		c.mu.Unlock()
		return zero, appErrors.Clone(appErrors.ErrModalClosed, "open the "+c.def.Name+" form before submitting")
	}
	c.draft = draft
	c.submitting++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.submitting--
		c.mu.Unlock()
	}()

	if err := c.check(draft, modal, file); err != nil {
		return zero, c.failForm(err)
	}

	if file != nil {
		ref, err := c.uploader.Upload(ctx, *c.def.Media, file)
		if err != nil {
			return zero, c.failForm(err)
		}
		c.def.AttachMedia(&draft, ref)
		c.mu.Lock()
		if c.modal == modal {
			c.draft = draft
		}
		c.mu.Unlock()
	}

	record, err := c.write(ctx, modal, draft)
	if err != nil {
		return zero, c.failForm(err)
	}

	splice := c.def.SpliceOnInsert && modal.Kind == ModalCreating
	c.mu.Lock()
	if c.modal == modal {
		c.modal = closedModal()
		c.draft = c.def.Defaults()
	}
	c.formErr = ""
	if splice {
		c.records = append([]T{record}, c.records...)
	}
	c.mu.Unlock()

	if !splice {
		_ = c.load(ctx)
	}
	return record, nil
}

// Apply reseeds the row id, mutates it and writes it back without touching the form.
func (c *Controller[T, D]) Apply(ctx context.Context, id string, mutate func(*D)) (T, error) {
	var zero T
	record, err := c.find(ctx, id)
	if err != nil {
		return zero, err
	}
	draft := c.seed(record)
	mutate(&draft)
	if err := c.validate.Struct(draft); err != nil {
		return zero, validationError(err)
	}
	updated, err := c.store.Update(ctx, id, draft)
	if err != nil {
		return zero, c.writeError("update", err)
	}
	_ = c.load(ctx)
	return updated, nil
}

// Delete removes the row and re-reads the list. An open edit form for the row is closed.
func (c *Controller[T, D]) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		wrapped := c.writeError("delete", err)
		c.mu.Lock()
		c.formErr = wrapped.Message
		c.mu.Unlock()
		return wrapped
	}
	c.mu.Lock()
	if c.modal.Kind == ModalEditing && c.modal.ID == id {
		c.modal = closedModal()
		c.draft = c.def.Defaults()
	}
	c.mu.Unlock()
	_ = c.load(ctx)
	return nil
}

// Get reads a single row from the store.
func (c *Controller[T, D]) Get(ctx context.Context, id string) (T, error) {
	record, err := c.store.Get(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, appErrors.Clone(appErrors.ErrNotFound, c.def.Name+" not found")
		}
		return zero, appErrors.WrapAs(appErrors.ErrRead, err, "Failed to load "+c.def.Name)
	}
	return record, nil
}

// Snapshot copies the full state.
func (c *Controller[T, D]) Snapshot() Snapshot[T, D] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T, D]{
		Records:    c.recordsLocked(),
		Loading:    c.loading > 0,
		Submitting: c.submitting > 0,
		ListError:  c.listErr,
		FormError:  c.formErr,
		Modal:      c.modal,
		Draft:      c.draft,
	}
}

func (c *Controller[T, D]) find(ctx context.Context, id string) (T, error) {
	c.mu.Lock()
	for _, r := range c.records {
		if r.RecordID() == id {
			c.mu.Unlock()
			return r, nil
		}
	}
	c.mu.Unlock()
	return c.Get(ctx, id)
}

func (c *Controller[T, D]) seed(record T) D {
	if c.def.Seed == nil {
		return c.def.Defaults()
	}
	return c.def.Seed(record)
}

func (c *Controller[T, D]) check(draft D, modal Modal, file *Upload) error {
	if err := c.validate.Struct(draft); err != nil {
		return validationError(err)
	}
	if file != nil && c.def.Media == nil {
		return appErrors.Clone(appErrors.ErrValidation, c.def.Name+" does not accept files")
	}
	if file == nil && c.def.RequireMediaOnCreate && modal.Kind == ModalCreating {
		return appErrors.Clone(appErrors.ErrValidation, "Please select a file to upload.")
	}
	return nil
}

func (c *Controller[T, D]) write(ctx context.Context, modal Modal, draft D) (T, error) {
	if modal.Kind == ModalEditing {
		record, err := c.store.Update(ctx, modal.ID, draft)
		if err != nil {
			return record, c.writeError("update", err)
		}
		return record, nil
	}
	record, err := c.store.Insert(ctx, draft)
	if err != nil {
		return record, c.writeError("add", err)
	}
	return record, nil
}

func (c *Controller[T, D]) writeError(verb string, err error) *appErrors.Error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, c.def.Name+" not found")
	}
	c.logger.Warn(verb+" failed", zap.Error(err))
	return appErrors.WrapAs(appErrors.ErrWrite, err, "Failed to "+verb+" item: "+err.Error())
}

func (c *Controller[T, D]) failForm(err error) error {
	msg := err.Error()
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	c.mu.Lock()
	c.formErr = strings.TrimSpace(msg)
	c.mu.Unlock()
	return err
}
