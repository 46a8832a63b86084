// Package formstate keeps the typed, in-memory mirror of a rendered form.
// Widgets update it through explicit setters; the submission normalizer reads
// it instead of scraping markup.
package formstate

import (
	"strings"

	"github.com/goliatone/go-dynform/pkg/codec"
)

// Carrier names written by the submission normalizer.
const (
	CarrierSelectedFeatures = "selected_features"
	CarrierCustomFields     = "custom_fields"
)

// FeatureCheckboxName is the input name shared by every feature checkbox.
const FeatureCheckboxName = "selected_features"

// Kind enumerates control kinds.
type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindCurrency Kind = "currency"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindHidden   Kind = "hidden"
)

// Control is one input of the form.
type Control struct {
	Name    string
	Kind    Kind
	Value   string
	Checked bool
	// Raw is the unformatted numeric value behind a currency display. Nil
	// means the control carries no raw value.
	Raw *string
	// Custom flags a user-defined field row and carries its descriptor.
	Custom   *codec.CustomField
	Required bool
	Options  []string
}

// Form is an ordered collection of controls plus the carrier slots the
// backend reads.
type Form struct {
	controls []*Control
	carriers map[string]string
	order    []string
}

// New returns an empty form with the standard carriers declared.
func New() *Form {
	f := &Form{carriers: make(map[string]string)}
	f.DeclareCarrier(CarrierSelectedFeatures)
	f.DeclareCarrier(CarrierCustomFields)
	return f
}

// Add appends a control and returns it for further mutation.
func (f *Form) Add(control Control) *Control {
	c := control
	f.controls = append(f.controls, &c)
	return &c
}

// Text appends a text control.
func (f *Form) Text(name, value string) *Control {
	return f.Add(Control{Name: name, Kind: KindText, Value: value})
}

// Date appends a native date control (yyyy-mm-dd values).
func (f *Form) Date(name, value string) *Control {
	return f.Add(Control{Name: name, Kind: KindDate, Value: value})
}

// Currency appends a currency control showing display and carrying raw.
func (f *Form) Currency(name, display, raw string) *Control {
	r := raw
	return f.Add(Control{Name: name, Kind: KindCurrency, Value: display, Raw: &r})
}

// Checkbox appends a checkbox control.
func (f *Form) Checkbox(name, value string, checked bool) *Control {
	return f.Add(Control{Name: name, Kind: KindCheckbox, Value: value, Checked: checked})
}

// Custom appends a user-defined field row.
func (f *Form) Custom(field codec.CustomField, value string) *Control {
	meta := field
	kind := Kind(field.Type)
	switch kind {
	case KindText, KindNumber, KindDate:
	default:
		kind = KindText
	}
	return f.Add(Control{Name: field.Name, Kind: kind, Value: value, Custom: &meta})
}

// Controls returns the live controls in order.
func (f *Form) Controls() []*Control {
	return append([]*Control(nil), f.controls...)
}

// Len reports the number of controls.
func (f *Form) Len() int {
	return len(f.controls)
}

// Find returns the first non-checkbox control named name.
func (f *Form) Find(name string) (*Control, bool) {
	for _, c := range f.controls {
		if c.Name == name && c.Kind != KindCheckbox {
			return c, true
		}
	}
	return nil, false
}

// Set updates the value of the named control.
func (f *Form) Set(name, value string) bool {
	c, ok := f.Find(name)
	if !ok {
		return false
	}
	c.Value = value
	return true
}

// SetCurrency records a typed currency display and keeps the raw value in
// sync with it.
func (f *Form) SetCurrency(name, display string) bool {
	c, ok := f.Find(name)
	if !ok {
		return false
	}
	raw := codec.StripCurrency(display)
	c.Value = display
	c.Raw = &raw
	return true
}

// Check toggles the checkbox named name with the given value.
func (f *Form) Check(name, value string, checked bool) bool {
	found := false
	for _, c := range f.controls {
		if c.Kind == KindCheckbox && c.Name == name && c.Value == value {
			c.Checked = checked
			found = true
		}
	}
	return found
}

// Remove drops every control named name.
func (f *Form) Remove(name string) int {
	kept := f.controls[:0]
	removed := 0
	for _, c := range f.controls {
		if c.Name == name {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	f.controls = kept
	return removed
}

// DeclareCarrier registers an empty carrier slot.
func (f *Form) DeclareCarrier(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if f.carriers == nil {
		f.carriers = make(map[string]string)
	}
	if _, ok := f.carriers[name]; ok {
		return
	}
	f.carriers[name] = ""
	f.order = append(f.order, name)
}

// SetCarrier writes a carrier value, declaring the slot if needed.
func (f *Form) SetCarrier(name, value string) {
	f.DeclareCarrier(name)
	f.carriers[strings.TrimSpace(name)] = value
}

// Carrier returns a carrier value.
func (f *Form) Carrier(name string) (string, bool) {
	v, ok := f.carriers[name]
	return v, ok
}

// CarrierNames lists declared carriers in declaration order.
func (f *Form) CarrierNames() []string {
	return append([]string(nil), f.order...)
}

// Valid reports native validity: every required, non-checkbox control holds
// a non-blank value.
func (f *Form) Valid() bool {
	for _, c := range f.controls {
		if !c.Required || c.Kind == KindCheckbox {
			continue
		}
		if strings.TrimSpace(c.Value) == "" {
			return false
		}
	}
	return true
}
