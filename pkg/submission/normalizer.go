// Package submission canonicalises typed form state into the flat payload the
// intake backend expects.
package submission

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-dynform/pkg/codec"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/logging"
)

// DefaultCurrencyValue is submitted for currency controls without a raw
// amount.
const DefaultCurrencyValue = "0"

// Submission is the canonical payload rebuilt on every Normalize call.
type Submission struct {
	SelectedFeatures string
	CustomFields     string
	// Values holds every submitted control with currency and date values
	// normalized and carriers applied.
	Values url.Values
}

// Encode returns the application/x-www-form-urlencoded body.
func (s Submission) Encode() string {
	if s.Values == nil {
		return ""
	}
	return s.Values.Encode()
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger receives the debug dump of every normalized payload.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// WithCarriers overrides the carrier slot names.
func WithCarriers(features, custom string) Option {
	return func(n *Normalizer) {
		if trimmed := strings.TrimSpace(features); trimmed != "" {
			n.featuresCarrier = trimmed
		}
		if trimmed := strings.TrimSpace(custom); trimmed != "" {
			n.customCarrier = trimmed
		}
	}
}

// WithFeatureCheckbox overrides the input name shared by feature checkboxes.
func WithFeatureCheckbox(name string) Option {
	return func(n *Normalizer) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			n.featureCheckbox = trimmed
		}
	}
}

// Normalizer reconciles form state into a Submission. It never blocks and
// never panics; a failing step is logged and the payload built so far is
// returned.
type Normalizer struct {
	logger          *slog.Logger
	featureCheckbox string
	featuresCarrier string
	customCarrier   string
}

// New constructs a Normalizer with the standard carrier names.
func New(options ...Option) *Normalizer {
	n := &Normalizer{
		featureCheckbox: formstate.FeatureCheckboxName,
		featuresCarrier: formstate.CarrierSelectedFeatures,
		customCarrier:   formstate.CarrierCustomFields,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(n)
	}
	n.logger = logging.OrDiscard(n.logger)
	return n
}

// Normalize writes the feature and custom-field carriers into form and returns
// the canonical payload. Widget values are left untouched, so repeated calls
// produce the same result.
func (n *Normalizer) Normalize(form *formstate.Form) (sub Submission) {
	sub.Values = url.Values{}
	if form == nil {
		return sub
	}
	defer func() {
		if rec := recover(); rec != nil {
			n.logger.Error("submission normalization aborted", "panic", fmt.Sprint(rec))
		}
	}()

	sub.SelectedFeatures = n.Features(form)
	form.SetCarrier(n.featuresCarrier, sub.SelectedFeatures)

	sub.CustomFields = CustomFields(form)
	form.SetCarrier(n.customCarrier, sub.CustomFields)

	for _, c := range form.Controls() {
		if c == nil || c.Name == "" {
			continue
		}
		switch {
		case c.Kind == formstate.KindCheckbox:
			if c.Checked {
				sub.Values.Add(c.Name, c.Value)
			}
		case c.Kind == formstate.KindCurrency || c.Raw != nil:
			sub.Values.Add(c.Name, CurrencyValue(c))
		case c.Kind == formstate.KindDate:
			sub.Values.Add(c.Name, DateValue(c))
		default:
			sub.Values.Add(c.Name, c.Value)
		}
	}

	for _, name := range form.CarrierNames() {
		value, _ := form.Carrier(name)
		sub.Values.Set(name, value)
	}

	n.dump(sub.Values)
	return sub
}

// Features joins the trimmed values of checked feature checkboxes in form
// order. Duplicates are kept.
func (n *Normalizer) Features(form *formstate.Form) string {
	var names []string
	for _, c := range form.Controls() {
		if c.Kind == formstate.KindCheckbox && c.Name == n.featureCheckbox && c.Checked {
			names = append(names, strings.TrimSpace(c.Value))
		}
	}
	return codec.EncodeFeatures(names)
}

// CustomFields encodes every custom-field control as label:name:type joined by
// '|'. Missing attributes yield empty segments.
func CustomFields(form *formstate.Form) string {
	var fields []codec.CustomField
	for _, c := range form.Controls() {
		if c.Custom == nil {
			continue
		}
		fields = append(fields, *c.Custom)
	}
	return codec.EncodeCustomFields(fields)
}

// CurrencyValue returns the raw amount of a currency control, or
// DefaultCurrencyValue when it has none.
func CurrencyValue(c *formstate.Control) string {
	if c.Raw == nil || *c.Raw == "" {
		return DefaultCurrencyValue
	}
	return *c.Raw
}

// DateValue returns a date control value reordered from yyyy-mm-dd to
// dd-mm-yyyy. Values without '-' are returned unchanged.
func DateValue(c *formstate.Control) string {
	value, _ := codec.ReorderDate(c.Value)
	return value
}

func (n *Normalizer) dump(values url.Values) {
	ctx := context.Background()
	if !n.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.String(key, strings.Join(values[key], ",")))
	}
	n.logger.DebugContext(ctx, "final form values before submission", attrs...)
}
