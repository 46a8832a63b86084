// Package jsonview serializes an intake view as JSON so script-driven clients
// can draw the form themselves.
package jsonview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/codec"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/session"
)

// Payload is the document emitted by Render.
type Payload struct {
	SessionID     string               `json:"session_id"`
	Action        string               `json:"action,omitempty"`
	Method        string               `json:"method"`
	Sentinel      string               `json:"sentinel"`
	Categories    []string             `json:"categories"`
	Selected      string               `json:"selected"`
	Category      string               `json:"category"`
	NewCategory   *NewCategory         `json:"new_category,omitempty"`
	ShowStatus    bool                 `json:"show_status"`
	SubmitEnabled bool                 `json:"submit_enabled"`
	Controls      []Control            `json:"controls"`
	Hidden        []render.HiddenField `json:"hidden"`
	Messages      []string             `json:"messages,omitempty"`
}

// NewCategory is present while the new-category flow is open.
type NewCategory struct {
	Name     string    `json:"name"`
	Features []Feature `json:"features"`
}

// Feature is one checklist entry of the new-category flow.
type Feature struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// Control mirrors formstate.Control with its display label resolved.
type Control struct {
	Name     string             `json:"name"`
	Label    string             `json:"label"`
	Kind     formstate.Kind     `json:"kind"`
	Value    string             `json:"value"`
	Raw      *string            `json:"raw,omitempty"`
	Checked  bool               `json:"checked,omitempty"`
	Required bool               `json:"required,omitempty"`
	Options  []string           `json:"options,omitempty"`
	Custom   *codec.CustomField `json:"custom,omitempty"`
}

// Renderer implements render.Renderer.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the payload with the given indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs a JSON view renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string { return "json" }

// ContentType reports the payload media type.
func (r *Renderer) ContentType() string { return "application/json" }

// Render encodes view as a Payload.
func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("jsonview: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload := Build(view)
	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(payload, "", r.indent)
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview: encode view: %w", err)
	}
	return out, nil
}

// Build converts view into its JSON document. Feature checkboxes are folded
// into the new-category checklist instead of the control list.
func Build(view render.View) Payload {
	method := view.Method
	if method == "" {
		method = "POST"
	}
	payload := Payload{
		SessionID:     view.SessionID,
		Action:        view.Action,
		Method:        method,
		Sentinel:      session.AddNewCategory,
		Categories:    nonNil(view.Categories),
		Selected:      view.Selected,
		Category:      view.Category,
		ShowStatus:    view.ShowStatus,
		SubmitEnabled: view.SubmitEnabled,
		Controls:      []Control{},
		Hidden:        view.Hidden,
		Messages:      view.Messages,
	}
	if payload.Hidden == nil {
		payload.Hidden = []render.HiddenField{}
	}

	labels := make(map[string]string, len(view.MasterFields))
	for _, field := range view.MasterFields {
		labels[field.Name] = field.DisplayLabel()
	}
	checked := make(map[string]bool, len(view.Checked))
	for _, name := range view.Checked {
		checked[name] = true
	}

	if view.Form != nil {
		for _, c := range view.Form.Controls() {
			if c.Kind == formstate.KindCheckbox && c.Name == formstate.FeatureCheckboxName {
				if c.Checked {
					checked[c.Value] = true
				}
				continue
			}
			payload.Controls = append(payload.Controls, control(c, labels))
		}
	}

	if view.NewCategoryMode {
		nc := &NewCategory{Name: view.NewCategoryName, Features: make([]Feature, 0, len(view.MasterFields))}
		for _, field := range view.MasterFields {
			nc.Features = append(nc.Features, Feature{
				Name:    field.Name,
				Label:   field.DisplayLabel(),
				Checked: checked[field.Name],
			})
		}
		payload.NewCategory = nc
	}
	return payload
}

func control(c *formstate.Control, labels map[string]string) Control {
	label, ok := labels[c.Name]
	if !ok {
		label = catalog.MasterField{Name: c.Name}.DisplayLabel()
	}
	if c.Custom != nil {
		label = c.Custom.Label
	}
	out := Control{
		Name:     c.Name,
		Label:    label,
		Kind:     c.Kind,
		Value:    c.Value,
		Checked:  c.Checked,
		Required: c.Required,
		Options:  c.Options,
		Custom:   c.Custom,
	}
	if c.Raw != nil {
		raw := *c.Raw
		out.Raw = &raw
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
