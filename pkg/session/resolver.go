package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/logging"
)

// FieldRenderer draws the input controls for a category. existing pre-fills
// the controls and is never nil.
type FieldRenderer interface {
	RenderFields(category string, fields []catalog.MasterField, existing map[string]any) error
}

// FieldRendererFunc adapts a function into a FieldRenderer.
type FieldRendererFunc func(category string, fields []catalog.MasterField, existing map[string]any) error

// RenderFields calls fn.
func (fn FieldRendererFunc) RenderFields(category string, fields []catalog.MasterField, existing map[string]any) error {
	return fn(category, fields, existing)
}

// ValidityChecker reports native form validity (required inputs filled,
// patterns satisfied).
type ValidityChecker interface {
	Valid() bool
}

// ValidityFunc adapts a function into a ValidityChecker.
type ValidityFunc func() bool

// Valid calls fn.
func (fn ValidityFunc) Valid() bool { return fn() }

// CategoryLookup resolves the field list of a category that is not mapped in
// the session yet. ok is false when the category is unknown.
type CategoryLookup interface {
	CategoryFields(ctx context.Context, category string) (fields []catalog.MasterField, ok bool, err error)
}

// Mode describes which part of the form a selection reveals.
type Mode string

const (
	ModeExisting    Mode = "existing"
	ModeNewCategory Mode = "new_category"
)

// RenderDecision is the outcome of a category selection.
type RenderDecision struct {
	Category string
	Mode     Mode
	// Rendered is true when the field renderer was invoked.
	Rendered bool
	// ShowNewCategoryForm reveals the new type name input, the feature
	// checklist and the create button.
	ShowNewCategoryForm bool
	ShowStatusSection   bool
	SubmitEnabled       bool
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger routes resolver diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithValidity supplies the native validity check used by the submit gate.
func WithValidity(checker ValidityChecker) Option {
	return func(r *Resolver) {
		r.validity = checker
	}
}

// WithLookup resolves unmapped categories before rendering them.
func WithLookup(lookup CategoryLookup) Option {
	return func(r *Resolver) {
		r.lookup = lookup
	}
}

// WithState makes the resolver operate on a caller-owned state.
func WithState(state *State) Option {
	return func(r *Resolver) {
		if state != nil {
			r.state = state
		}
	}
}

// WithBootstrap hands over the edit-mode payload: the fields of the record's
// category and the record itself. Both are consumed by Bootstrap.
func WithBootstrap(pending []catalog.MasterField, existing map[string]any) Option {
	return func(r *Resolver) {
		r.bootPending = catalog.CloneFields(pending)
		r.bootExisting = existing
	}
}

// RecordCategoryKey is the record entry naming its category.
const RecordCategoryKey = "category"

// BootstrapFromRecord resolves the fields of the record's category through
// lookup and returns the WithBootstrap option handing both to the session.
func BootstrapFromRecord(ctx context.Context, lookup CategoryLookup, record map[string]any) (Option, error) {
	if lookup == nil {
		return nil, errors.New("session: category lookup is required")
	}
	category, _ := record[RecordCategoryKey].(string)
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, errors.New("session: record has no category")
	}
	fields, ok, err := lookup.CategoryFields(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("session: resolve record category %q: %w", category, err)
	}
	if !ok || len(fields) == 0 {
		return nil, fmt.Errorf("session: unknown record category %q", category)
	}
	return WithBootstrap(fields, record), nil
}

// WithValidityListener is notified with the submit-enabled flag every time it
// is recomputed.
func WithValidityListener(fn func(enabled bool)) Option {
	return func(r *Resolver) {
		r.onValidity = fn
	}
}

// Resolver decides which fields to show for a category selection and tracks
// the new-category flow.
type Resolver struct {
	catalog      *catalog.Catalog
	renderer     FieldRenderer
	validity     ValidityChecker
	lookup       CategoryLookup
	logger       *slog.Logger
	state        *State
	onValidity   func(bool)
	bootPending  []catalog.MasterField
	bootExisting map[string]any
}

// New constructs a Resolver. A nil catalog is replaced by an empty one; a nil
// renderer is not allowed to be invoked and yields errors on render.
func New(cat *catalog.Catalog, renderer FieldRenderer, options ...Option) *Resolver {
	r := &Resolver{
		catalog:  cat,
		renderer: renderer,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)
	if r.catalog == nil {
		r.catalog = catalog.New(catalog.WithLogger(r.logger))
	}
	if r.state == nil {
		r.state = NewState()
	}
	if r.state.Fields == nil {
		r.state.Fields = make(CategoryFieldMap)
	}
	if r.bootPending != nil || r.bootExisting != nil {
		r.state.PendingFields = r.bootPending
		r.state.Existing = r.bootExisting
		r.bootPending, r.bootExisting = nil, nil
	}
	return r
}

// State exposes the session state. Callers may read it freely; mutations
// outside the resolver bypass the render bookkeeping.
func (r *Resolver) State() *State {
	return r.state
}

// Catalog returns the master field catalog owned by the resolver.
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.catalog
}

// LoadCatalog fetches the master field list. Failures are logged by the
// catalog and leave the previous list in place.
func (r *Resolver) LoadCatalog(ctx context.Context, src catalog.Source) ([]catalog.MasterField, error) {
	return r.catalog.Load(ctx, src)
}

// Start loads the catalog and then runs the edit-mode bootstrap. A failed
// catalog load does not prevent the bootstrap; both errors are joined.
func (r *Resolver) Start(ctx context.Context, src catalog.Source) error {
	if ctx == nil {
		return errors.New("session: context is required")
	}
	_, loadErr := r.LoadCatalog(ctx, src)
	_, bootErr := r.Bootstrap(ctx)
	return errors.Join(loadErr, bootErr)
}

// Bootstrap seeds the category map for an edit-mode record and renders it
// immediately. It runs once: the record is discarded afterwards. It reports
// whether a render took place.
func (r *Resolver) Bootstrap(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	st := r.state
	if len(st.PendingFields) == 0 || st.Existing == nil {
		return false, nil
	}

	existing := st.Existing
	st.Existing = nil

	category, _ := existing["category"].(string)
	category = strings.TrimSpace(category)
	if category == "" {
		r.logger.Warn("bootstrap record has no category", "session", st.ID)
		return false, nil
	}

	fields := catalog.CloneFields(st.PendingFields)
	st.Fields[category] = fields
	if err := r.render(category, fields, existing); err != nil {
		return false, err
	}
	st.Category = category
	st.LastRendered = category
	r.logger.Debug("bootstrapped category", "session", st.ID, "category", category, "fields", len(fields))
	r.Recheck()
	return true, nil
}

// SelectCategory handles a change of the category selector.
func (r *Resolver) SelectCategory(ctx context.Context, name string) (RenderDecision, error) {
	if ctx == nil {
		return RenderDecision{}, errors.New("session: context is required")
	}
	st := r.state
	st.Category = name
	decision := RenderDecision{Category: name}

	if name == AddNewCategory {
		decision.Mode = ModeNewCategory
		decision.ShowNewCategoryForm = true
		decision.SubmitEnabled = r.Recheck()
		return decision, nil
	}

	decision.Mode = ModeExisting
	decision.ShowStatusSection = true

	fields, cached := st.Fields[name]
	if !cached || st.LastRendered != name {
		if !cached {
			resolved, ok, err := r.resolve(ctx, name)
			if err != nil {
				decision.SubmitEnabled = r.Recheck()
				return decision, err
			}
			if ok {
				st.Fields[name] = resolved
			}
			fields = resolved
		}
		existing := st.Existing
		if existing == nil {
			existing = map[string]any{}
		}
		if err := r.render(name, fields, existing); err != nil {
			decision.SubmitEnabled = r.Recheck()
			return decision, err
		}
		st.LastRendered = name
		decision.Rendered = true
	}

	r.logger.Debug("category selected", "session", st.ID, "category", name, "rendered", decision.Rendered)
	decision.SubmitEnabled = r.Recheck()
	return decision, nil
}

func (r *Resolver) resolve(ctx context.Context, name string) ([]catalog.MasterField, bool, error) {
	if r.lookup == nil {
		return nil, false, nil
	}
	fields, ok, err := r.lookup.CategoryFields(ctx, name)
	if err != nil {
		r.logger.Error("category lookup failed", "category", name, "error", err)
		return nil, false, fmt.Errorf("session: resolve category %q: %w", name, err)
	}
	return catalog.CloneFields(fields), ok, nil
}

// PromoteNewCategory turns the checked master fields into a new category named
// name, renders it and enables submission. Validation and render failures
// leave the session untouched.
func (r *Resolver) PromoteNewCategory(ctx context.Context, checked []string, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	names := make([]string, 0, len(checked))
	for _, field := range checked {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return emptySelection()
	}
	category := strings.TrimSpace(name)
	if category == "" {
		return emptyName()
	}

	st := r.state
	fields := r.catalog.Filter(names)
	if err := r.render(category, catalog.CloneFields(fields), map[string]any{}); err != nil {
		return err
	}
	st.Fields[category] = fields
	st.PendingFields = catalog.CloneFields(fields)
	st.Draft.Reset()
	r.logger.Info("category defined", "session", st.ID, "category", category, "fields", catalog.FieldNames(fields))

	r.Recheck()
	r.setSubmitEnabled(true)
	return nil
}

// PromoteDraft promotes the session draft.
func (r *Resolver) PromoteDraft(ctx context.Context) error {
	return r.PromoteNewCategory(ctx, r.state.Draft.Checked(), r.state.Draft.Name)
}

// SubmitEnabled evaluates the submit gate without recording it. With the
// new-category sentinel selected, submission also needs a pending field list.
func (r *Resolver) SubmitEnabled() bool {
	valid := r.validity == nil || r.validity.Valid()
	if r.state.NewCategoryMode() {
		return valid && len(r.state.PendingFields) > 0
	}
	return valid
}

// Recheck recomputes the submit gate, stores it in the state and notifies the
// validity listener.
func (r *Resolver) Recheck() bool {
	enabled := r.SubmitEnabled()
	r.setSubmitEnabled(enabled)
	return enabled
}

func (r *Resolver) setSubmitEnabled(enabled bool) {
	r.state.SubmitEnabled = enabled
	if r.onValidity != nil {
		r.onValidity(enabled)
	}
}

func (r *Resolver) render(category string, fields []catalog.MasterField, existing map[string]any) error {
	if r.renderer == nil {
		return errors.New("session: field renderer is not configured")
	}
	if err := r.renderer.RenderFields(category, fields, existing); err != nil {
		r.logger.Error("render fields failed", "category", category, "error", err)
		return fmt.Errorf("session: render %q: %w", category, err)
	}
	return nil
}
