// Package html renders the intake page as server-side HTML from pongo2
// templates loaded through go-template.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/session"
)

const formTemplate = "form.tmpl"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// form.tmpl at its root.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// Renderer draws a render.View as an HTML form.
type Renderer struct {
	engine *engine
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	eng, err := newEngine(cfg.templateFS)
	if err != nil {
		return nil, err
	}
	return &Renderer{engine: eng}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.engine == nil {
		return nil, fmt.Errorf("html: renderer is not initialised")
	}
	return r.engine.render(formTemplate, map[string]any{"view": viewContext(view)})
}

// Static status section inputs, skipped when the category draws its own.
const (
	statusField  = "status"
	remarksField = "remarks"
)

func viewContext(view render.View) map[string]any {
	master := make(map[string]catalog.MasterField, len(view.MasterFields))
	for _, field := range view.MasterFields {
		master[field.Name] = field
	}

	checked := make(map[string]bool, len(view.Checked))
	for _, name := range view.Checked {
		checked[name] = true
	}

	controls := make([]map[string]any, 0)
	drawn := make(map[string]bool)
	if view.Form != nil {
		for _, c := range view.Form.Controls() {
			drawn[c.Name] = true
			if c.Kind == formstate.KindCheckbox {
				if c.Name == formstate.FeatureCheckboxName && c.Checked {
					checked[c.Value] = true
				}
				continue
			}
			controls = append(controls, controlContext(c, master))
		}
	}

	features := make([]map[string]any, 0, len(view.MasterFields))
	for _, field := range view.MasterFields {
		features = append(features, map[string]any{
			"name":    field.Name,
			"label":   field.DisplayLabel(),
			"checked": checked[field.Name],
		})
	}

	method := view.Method
	if method == "" {
		method = "POST"
	}

	return map[string]any{
		"session_id":        view.SessionID,
		"action":            view.Action,
		"method":            method,
		"categories":        view.Categories,
		"selected":          view.Selected,
		"category":          view.Category,
		"sentinel":          session.AddNewCategory,
		"new_category_mode": view.NewCategoryMode,
		"new_category_name": view.NewCategoryName,
		"show_status":       view.ShowStatus,
		"has_status":        drawn[statusField],
		"has_remarks":       drawn[remarksField],
		"submit_enabled":    view.SubmitEnabled,
		"feature_name":      formstate.FeatureCheckboxName,
		"features":          features,
		"controls":          controls,
		"hidden":            hiddenContext(view.Hidden),
		"messages":          view.Messages,
	}
}

func controlContext(c *formstate.Control, master map[string]catalog.MasterField) map[string]any {
	field, ok := master[c.Name]
	if !ok {
		field = catalog.MasterField{Name: c.Name}
	}
	label := field.DisplayLabel()
	optionLabels := render.OptionLabels(field)
	choices := make([]map[string]any, 0, len(c.Options))
	for _, option := range c.Options {
		text, ok := optionLabels[option]
		if !ok {
			text = option
		}
		choices = append(choices, map[string]any{"value": option, "label": text})
	}
	out := map[string]any{
		"name":       c.Name,
		"kind":       string(c.Kind),
		"input_type": inputType(c.Kind),
		"value":      c.Value,
		"label":      label,
		"required":   c.Required,
		"options":    c.Options,
		"choices":    choices,
		"has_raw":    c.Raw != nil,
		"raw":        "",
		"custom":     c.Custom != nil,
	}
	if c.Raw != nil {
		out["raw"] = *c.Raw
	}
	if c.Custom != nil {
		out["label"] = c.Custom.Label
		out["custom_label"] = c.Custom.Label
		out["custom_name"] = c.Custom.Name
		out["custom_type"] = c.Custom.Type
	}
	return out
}

func inputType(kind formstate.Kind) string {
	switch kind {
	case formstate.KindNumber:
		return "number"
	case formstate.KindDate:
		return "date"
	case formstate.KindHidden:
		return "hidden"
	default:
		return "text"
	}
}

func hiddenContext(fields []render.HiddenField) []map[string]any {
	out := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}
