package formstate

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/codec"
)

// DefaultCurrencySymbol prefixes formatted currency displays.
const DefaultCurrencySymbol = "₹"

// Options tunes how field lists are turned into controls.
type Options struct {
	// Locale drives digit grouping of currency displays. Defaults to
	// language.English.
	Locale language.Tag
	// CurrencySymbol defaults to DefaultCurrencySymbol.
	CurrencySymbol string
}

// FromFields builds controls for a resolved field list, pre-filled from an
// existing record. Stored day-first dates are converted back into the native
// input layout and currency controls carry their raw amount.
func FromFields(fields []catalog.MasterField, existing map[string]any, opts Options) *Form {
	f := New()
	for _, field := range fields {
		value := stringValue(existing[field.Name])
		switch field.Type {
		case catalog.FieldTypeDate:
			c := f.Date(field.Name, codec.InputDate(value))
			c.Required = field.Required
		case catalog.FieldTypeCurrency:
			raw := codec.StripCurrency(value)
			display := ""
			if raw != "" {
				display = FormatCurrency(raw, opts)
			}
			c := f.Currency(field.Name, display, raw)
			c.Required = field.Required
		default:
			f.Add(Control{
				Name:     field.Name,
				Kind:     kindFor(field.Type),
				Value:    value,
				Required: field.Required,
				Options:  append([]string(nil), field.Options...),
			})
		}
	}
	return f
}

// AddFeatureChecklist appends one checkbox per master field, named
// FeatureCheckboxName and valued with the field name.
func (f *Form) AddFeatureChecklist(master []catalog.MasterField, checked []string) {
	on := make(map[string]struct{}, len(checked))
	for _, name := range checked {
		on[strings.TrimSpace(name)] = struct{}{}
	}
	for _, field := range master {
		_, isChecked := on[field.Name]
		f.Checkbox(FeatureCheckboxName, field.Name, isChecked)
	}
}

// FormatCurrency renders a raw amount with locale grouping and the currency
// symbol. Values that are not numbers are returned unchanged.
func FormatCurrency(raw string, opts Options) string {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	tag := opts.Locale
	if tag == language.Und {
		tag = language.English
	}
	symbol := opts.CurrencySymbol
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return symbol + message.NewPrinter(tag).Sprintf("%.2f", amount)
}

func kindFor(t catalog.FieldType) Kind {
	switch t {
	case catalog.FieldTypeNumber:
		return KindNumber
	case catalog.FieldTypeSelect, catalog.FieldTypeDatalist:
		return KindSelect
	default:
		return KindText
	}
}

func stringValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
