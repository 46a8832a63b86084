package render

import (
	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/formstate"
)

// Surface is the drawing target of a session: the dynamic field container.
// It implements session.FieldRenderer by rebuilding its form from the field
// list on every render, and session.ValidityChecker by reporting the form's
// native validity. A Surface belongs to a single session.
type Surface struct {
	opts      formstate.Options
	category  string
	fields    []catalog.MasterField
	form      *formstate.Form
	renders   int
	localizer *Localizer
}

// SurfaceOption customises a Surface.
type SurfaceOption func(*Surface)

// WithLocalizer translates field labels before they are drawn.
func WithLocalizer(l *Localizer) SurfaceOption {
	return func(s *Surface) {
		s.localizer = l
	}
}

// NewSurface returns an empty surface.
func NewSurface(opts formstate.Options, options ...SurfaceOption) *Surface {
	s := &Surface{opts: opts, form: formstate.New()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// RenderFields clears the container and draws one control per field.
func (s *Surface) RenderFields(category string, fields []catalog.MasterField, existing map[string]any) error {
	s.category = category
	s.fields = s.Localize(fields)
	s.form = formstate.FromFields(s.fields, existing, s.opts)
	s.renders++
	return nil
}

// Localize returns a copy of fields with labels translated by the surface
// localizer, if any.
func (s *Surface) Localize(fields []catalog.MasterField) []catalog.MasterField {
	return s.localizer.Fields(fields)
}

// Valid reports whether every required control holds a value.
func (s *Surface) Valid() bool {
	return s.form == nil || s.form.Valid()
}

// Category names the category drawn last.
func (s *Surface) Category() string { return s.category }

// Fields returns the field list drawn last.
func (s *Surface) Fields() []catalog.MasterField { return catalog.CloneFields(s.fields) }

// Form returns the live form. Widgets mutate it directly.
func (s *Surface) Form() *formstate.Form { return s.form }

// Renders counts completed renders.
func (s *Surface) Renders() int { return s.renders }
