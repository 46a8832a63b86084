package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/logging"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithLoader sets the loader used by Load.
func WithLoader(loader Loader) Option {
	return func(c *Catalog) {
		c.loader = loader
	}
}

// WithLogger routes load diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// Catalog holds the master field list and any predefined categories shipped
// alongside it. A Catalog is owned by a single session and is not safe for
// concurrent mutation.
type Catalog struct {
	loader     Loader
	logger     *slog.Logger
	validate   *validator.Validate
	fields     []MasterField
	index      map[string]int
	categories map[string][]string
	loaded     bool
}

// New constructs an empty catalog.
func New(options ...Option) *Catalog {
	c := &Catalog{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger)
	c.validate = validator.New()
	return c
}

type document struct {
	Fields     *[]MasterField      `json:"fields" yaml:"fields"`
	Categories map[string][]string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

type fieldList struct {
	Fields []MasterField `validate:"dive"`
}

// Load fetches the master field document from src and replaces the catalog
// wholesale. Transport and shape failures are reported as *FetchError and
// leave the previous contents untouched. Calling Load repeatedly with the same
// payload yields the same catalog.
func (c *Catalog) Load(ctx context.Context, src Source) ([]MasterField, error) {
	if ctx == nil {
		return nil, errors.New("catalog: context is required")
	}
	location := ""
	if src != nil {
		location = src.Location()
	}
	if c.loader == nil {
		err := &FetchError{Op: FetchOpTransport, Source: location, Err: errors.New("loader is not configured")}
		c.logger.Error("failed to fetch master fields", "source", location, "error", err)
		return nil, err
	}

	raw, err := c.loader.Load(ctx, src)
	if err != nil {
		fetchErr := &FetchError{Op: FetchOpTransport, Source: location, Err: err}
		c.logger.Error("failed to fetch master fields", "source", location, "error", err)
		return nil, fetchErr
	}

	doc, err := parseDocument(raw)
	if err != nil {
		fetchErr := &FetchError{Op: FetchOpDecode, Source: location, Err: err}
		c.logger.Error("invalid master field response", "source", location, "error", err)
		return nil, fetchErr
	}

	if err := c.Replace(*doc.Fields, doc.Categories); err != nil {
		fetchErr := &FetchError{Op: FetchOpDecode, Source: location, Err: err}
		c.logger.Error("invalid master field response", "source", location, "error", err)
		return nil, fetchErr
	}

	c.logger.Info("master fields loaded", "source", location, "fields", len(c.fields), "names", FieldNames(c.fields))
	return c.Fields(), nil
}

// Replace validates fields and installs them as the catalog contents.
// Category entries referencing unknown field names are kept; Filter ignores
// the unknown names when the category is resolved.
func (c *Catalog) Replace(fields []MasterField, categories map[string][]string) error {
	normalized := make([]MasterField, 0, len(fields))
	index := make(map[string]int, len(fields))
	for _, field := range fields {
		field = field.Clone()
		field.Name = strings.TrimSpace(field.Name)
		if _, exists := index[field.Name]; exists && field.Name != "" {
			return fmt.Errorf("%w: duplicate field %q", ErrMalformedCatalog, field.Name)
		}
		index[field.Name] = len(normalized)
		normalized = append(normalized, field)
	}
	if err := c.validate.Struct(fieldList{Fields: normalized}); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}

	cats := make(map[string][]string, len(categories))
	for name, names := range categories {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		cats[key] = append([]string(nil), names...)
	}

	c.fields = normalized
	c.index = index
	c.categories = cats
	c.loaded = true
	return nil
}

func parseDocument(raw []byte) (document, error) {
	var doc document
	if len(strings.TrimSpace(string(raw))) == 0 {
		return document{}, fmt.Errorf("%w: empty body", ErrMalformedCatalog)
	}

	if json.Valid(raw) {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return document{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
	} else if err := yaml.Unmarshal(raw, &doc); err != nil {
		return document{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	if doc.Fields == nil {
		return document{}, fmt.Errorf("%w: missing \"fields\" list", ErrMalformedCatalog)
	}
	return doc, nil
}

// Loaded reports whether a catalog has been installed.
func (c *Catalog) Loaded() bool {
	return c != nil && c.loaded
}

// Fields returns a copy of the master field list in catalog order.
func (c *Catalog) Fields() []MasterField {
	if c == nil {
		return nil
	}
	return CloneFields(c.fields)
}

// Len reports the number of master fields.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

// Field returns the master field registered under name.
func (c *Catalog) Field(name string) (MasterField, bool) {
	if c == nil {
		return MasterField{}, false
	}
	idx, ok := c.index[name]
	if !ok {
		return MasterField{}, false
	}
	return c.fields[idx].Clone(), true
}

// Filter returns the master fields whose names appear in names. The result
// follows catalog order, not the order of names; unknown names are skipped.
func (c *Catalog) Filter(names []string) []MasterField {
	if c == nil || len(names) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[strings.TrimSpace(name)] = struct{}{}
	}
	out := make([]MasterField, 0, len(wanted))
	for _, field := range c.fields {
		if _, ok := wanted[field.Name]; ok {
			out = append(out, field.Clone())
		}
	}
	return out
}

// Categories returns the predefined category names in sorted order.
func (c *Catalog) Categories() []string {
	if c == nil || len(c.categories) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryFields resolves a predefined category into its master fields.
func (c *Catalog) CategoryFields(ctx context.Context, category string) ([]MasterField, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if c == nil {
		return nil, false, nil
	}
	names, ok := c.categories[category]
	if !ok {
		return nil, false, nil
	}
	return c.Filter(names), true, nil
}
