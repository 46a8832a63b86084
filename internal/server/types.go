package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-dynform/pkg/catalog"
)

var (
	// ErrTypeExists is returned when creating a type whose name is taken.
	ErrTypeExists = errors.New("server: type already exists")
	// ErrInvalidType is returned for a nameless type or an empty field list.
	ErrInvalidType = errors.New("server: type name and fields are required")
)

// TypeRegistry keeps asset types and their field lists in memory. It is safe
// for concurrent use.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string][]catalog.MasterField
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string][]catalog.MasterField)}
}

// Seed registers every predefined category of cat that is not known yet.
func (r *TypeRegistry) Seed(ctx context.Context, cat *catalog.Catalog) error {
	for _, name := range cat.Categories() {
		fields, ok, err := cat.CategoryFields(ctx, name)
		if err != nil {
			return err
		}
		if !ok || len(fields) == 0 {
			continue
		}
		if err := r.Create(name, fields); err != nil && !errors.Is(err, ErrTypeExists) {
			return err
		}
	}
	return nil
}

// Create registers a new type.
func (r *TypeRegistry) Create(name string, fields []catalog.MasterField) error {
	name = strings.TrimSpace(name)
	if name == "" || len(fields) == 0 {
		return ErrInvalidType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return ErrTypeExists
	}
	r.types[name] = catalog.CloneFields(fields)
	return nil
}

// Upsert registers name or replaces its field list.
func (r *TypeRegistry) Upsert(name string, fields []catalog.MasterField) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.types[name] = catalog.CloneFields(fields)
	return nil
}

// Fields returns a copy of the field list of name.
func (r *TypeRegistry) Fields(name string) ([]catalog.MasterField, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fields, ok := r.types[name]
	if !ok {
		return nil, false
	}
	return catalog.CloneFields(fields), true
}

// CategoryFields resolves a type for the session resolver.
func (r *TypeRegistry) CategoryFields(ctx context.Context, category string) ([]catalog.MasterField, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	fields, ok := r.Fields(category)
	return fields, ok, nil
}

// Names lists the registered types, sorted.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
