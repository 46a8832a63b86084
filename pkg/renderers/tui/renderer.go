// Package tui drives the intake flow from a terminal. It plays the part of the
// browser: it walks the session resolver through a category selection or a
// new-category definition, prompts for every drawn control and hands the form
// to the submission normalizer.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/codec"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/session"
	"github.com/goliatone/go-dynform/pkg/submission"
)

const (
	addNewLabel        = "+ Add new type"
	defaultMaxAttempts = 3
)

var customFieldTypes = []string{"text", "number", "date"}

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	normalizer   *submission.Normalizer
	logger       *slog.Logger
	out          io.Writer
	maxAttempts  int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxAttempts:  defaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	if r.normalizer == nil {
		r.normalizer = submission.New(submission.WithLogger(r.logger))
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every control of view.Form and returns the serialized
// submission.
func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if view.Form == nil {
		return nil, errors.New("tui: view has no form")
	}
	if err := r.Fill(ctx, view.Form, view.MasterFields); err != nil {
		return nil, err
	}
	return r.Encode(r.normalizer.Normalize(view.Form))
}

// Run walks a full intake session: pick or define a category, fill in the
// drawn controls and normalize the result. The surface must be the field
// renderer of resolver.
func (r *Renderer) Run(ctx context.Context, resolver *session.Resolver, surface *render.Surface) (submission.Submission, error) {
	if ctx == nil {
		return submission.Submission{}, errors.New("tui: context is required")
	}
	if resolver == nil || surface == nil {
		return submission.Submission{}, errors.New("tui: resolver and surface are required")
	}

	view := render.Snapshot(resolver, surface)
	choices := append(append([]string(nil), view.Categories...), addNewLabel)
	picked, err := r.driver.Choose(ctx, Question{
		Prompt:  "Asset type",
		Choices: choices,
		Default: view.Category,
	})
	if err != nil {
		return submission.Submission{}, err
	}

	category, newType := picked, ""
	switch {
	case picked == addNewLabel:
		category = session.AddNewCategory
		if newType, err = r.defineCategory(ctx, resolver, surface); err != nil {
			return submission.Submission{}, err
		}
	case contains(view.Categories, picked):
		if _, err := resolver.SelectCategory(ctx, category); err != nil {
			return submission.Submission{}, err
		}
	default:
		return submission.Submission{}, fmt.Errorf("tui: unknown asset type %q", picked)
	}

	form := surface.Form()
	if err := r.Fill(ctx, form, resolver.Catalog().Fields()); err != nil {
		return submission.Submission{}, err
	}
	form.Add(formstate.Control{Name: "category", Kind: formstate.KindHidden, Value: category})
	if newType != "" {
		form.Add(formstate.Control{Name: "new_type", Kind: formstate.KindHidden, Value: newType})
	}

	if !resolver.Recheck() {
		return submission.Submission{}, ErrSubmitDisabled
	}
	sub := r.normalizer.Normalize(form)
	r.logger.Info("submission collected", "session", resolver.State().ID, "category", category, "new_type", newType)
	return sub, nil
}

func (r *Renderer) defineCategory(ctx context.Context, resolver *session.Resolver, surface *render.Surface) (string, error) {
	if _, err := resolver.SelectCategory(ctx, session.AddNewCategory); err != nil {
		return "", err
	}
	master := resolver.Catalog().Fields()
	choices := featureChoices(master)

	draft := &resolver.State().Draft
	for attempt := 1; ; attempt++ {
		var preset []string
		for i, field := range master {
			if draft.IsChecked(field.Name) {
				preset = append(preset, choices[i])
			}
		}
		picked, err := r.driver.ChooseMany(ctx, Question{
			Prompt:  "Fields for the new type",
			Choices: choices,
			Preset:  preset,
		})
		if err != nil {
			return "", err
		}
		for i, field := range master {
			draft.Toggle(field.Name, contains(picked, choices[i]))
		}

		name, err := r.driver.Ask(ctx, Question{Prompt: "New type name", Default: draft.Name})
		if err != nil {
			return "", err
		}
		draft.Name = name

		checked := draft.Checked()
		err = resolver.PromoteDraft(ctx)
		if err == nil {
			surface.Form().AddFeatureChecklist(master, checked)
			if err := r.collectCustomFields(ctx, surface.Form()); err != nil {
				return "", err
			}
			return strings.TrimSpace(name), nil
		}

		var invalid *session.ValidationError
		if !errors.As(err, &invalid) {
			return "", err
		}
		if notifyErr := r.driver.Notify(ctx, invalid.Message); notifyErr != nil {
			return "", notifyErr
		}
		if attempt >= r.maxAttempts {
			return "", ErrTooManyAttempts
		}
	}
}

func (r *Renderer) collectCustomFields(ctx context.Context, form *formstate.Form) error {
	for {
		more, err := r.driver.Confirm(ctx, "Add a custom field?", false)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		label, err := r.driver.Ask(ctx, Question{Prompt: "Custom field label", Validate: requiredValidator})
		if err != nil {
			return err
		}
		name, err := r.driver.Ask(ctx, Question{
			Prompt:   "Custom field name",
			Default:  fieldName(label),
			Validate: requiredValidator,
		})
		if err != nil {
			return err
		}
		fieldType, err := r.driver.Choose(ctx, Question{
			Prompt:  "Custom field type",
			Choices: customFieldTypes,
			Default: customFieldTypes[0],
		})
		if err != nil {
			return err
		}
		if !contains(customFieldTypes, fieldType) {
			fieldType = customFieldTypes[0]
		}
		form.Custom(codec.CustomField{
			Label: strings.TrimSpace(label),
			Name:  strings.TrimSpace(name),
			Type:  fieldType,
		}, "")
	}
}

// Fill prompts for the value of every visible control of form. master
// supplies display labels.
func (r *Renderer) Fill(ctx context.Context, form *formstate.Form, master []catalog.MasterField) error {
	labels := make(map[string]string, len(master))
	for _, field := range master {
		labels[field.Name] = field.DisplayLabel()
	}
	for _, c := range form.Controls() {
		if c.Kind == formstate.KindCheckbox || c.Kind == formstate.KindHidden {
			continue
		}
		label := labels[c.Name]
		if c.Custom != nil {
			label = c.Custom.Label
		}
		if label == "" {
			label = c.Name
		}
		if err := r.promptControl(ctx, form, c, label); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptControl(ctx context.Context, form *formstate.Form, c *formstate.Control, label string) error {
	switch {
	case c.Kind == formstate.KindSelect && len(c.Options) > 0:
		value, err := r.driver.Choose(ctx, Question{
			Prompt:  label,
			Choices: c.Options,
			Default: c.Value,
		})
		if err != nil {
			return err
		}
		if contains(c.Options, value) {
			c.Value = value
		}
		return nil
	case c.Kind == formstate.KindCurrency:
		value, err := r.driver.Ask(ctx, Question{
			Prompt:   label,
			Default:  c.Value,
			Validate: chain(c.Required, amountValidator),
		})
		if err != nil {
			return err
		}
		form.SetCurrency(c.Name, value)
		return nil
	}

	var validate func(string) error
	switch c.Kind {
	case formstate.KindDate:
		validate = dateValidator
	case formstate.KindNumber:
		validate = numberValidator
	}
	value, err := r.driver.Ask(ctx, Question{
		Prompt:   label,
		Default:  c.Value,
		Help:     helpFor(c.Kind),
		Validate: chain(c.Required, validate),
	})
	if err != nil {
		return err
	}
	c.Value = value
	return nil
}

// Encode serializes a normalized submission in the configured format.
func (r *Renderer) Encode(sub submission.Submission) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(sub.Encode()), nil
	case OutputFormatPrettyText:
		keys := sortedKeys(sub)
		var b strings.Builder
		for _, key := range keys {
			fmt.Fprintf(&b, "%s: %s\n", key, strings.Join(sub.Values[key], ", "))
		}
		return []byte(b.String()), nil
	default:
		payload := make(map[string]any, len(sub.Values))
		for key, values := range sub.Values {
			if len(values) == 1 {
				payload[key] = values[0]
				continue
			}
			payload[key] = values
		}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode submission: %w", err)
		}
		return out, nil
	}
}

func sortedKeys(sub submission.Submission) []string {
	keys := make([]string, 0, len(sub.Values))
	for key := range sub.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// featureChoices labels each master field, adding the field name when two
// fields share a display label.
func featureChoices(master []catalog.MasterField) []string {
	counts := make(map[string]int, len(master))
	for _, field := range master {
		counts[field.DisplayLabel()]++
	}
	out := make([]string, len(master))
	for i, field := range master {
		label := field.DisplayLabel()
		if counts[label] > 1 {
			label = fmt.Sprintf("%s (%s)", label, field.Name)
		}
		out[i] = label
	}
	return out
}

func helpFor(kind formstate.Kind) string {
	if kind == formstate.KindDate {
		return "yyyy-mm-dd"
	}
	return ""
}

func fieldName(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), "_"))
}

func chain(required bool, validate func(string) error) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			if required {
				return errors.New("a value is required")
			}
			return nil
		}
		if validate == nil {
			return nil
		}
		return validate(value)
	}
}

func requiredValidator(value string) error {
	return chain(true, nil)(value)
}

func dateValidator(value string) error {
	if _, err := time.Parse(codec.InputDateLayout, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("expected a date as yyyy-mm-dd")
	}
	return nil
}

func numberValidator(value string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return fmt.Errorf("expected a number")
	}
	return nil
}

func amountValidator(value string) error {
	return numberValidator(codec.StripCurrency(value))
}
