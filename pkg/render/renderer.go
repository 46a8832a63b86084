package render

import (
	"context"

	"github.com/goliatone/go-dynform/pkg/catalog"
)

// Renderer turns a View into a byte representation (HTML markup, an encoded
// submission, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}

// FieldRenderer draws the input controls of a category. It matches the
// session package's field renderer contract.
type FieldRenderer interface {
	RenderFields(category string, fields []catalog.MasterField, existing map[string]any) error
}

var _ FieldRenderer = (*Surface)(nil)
