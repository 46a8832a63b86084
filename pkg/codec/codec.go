// Package codec isolates the string encodings shared by the browser form and
// the intake backend: comma-joined feature lists, pipe-joined custom field
// descriptors and hyphenated dates. Values are not escaped; a label, name or
// type containing ':' or '|' produces an ambiguous encoding.
package codec

import (
	"strings"
	"time"
)

const (
	FeatureSeparator     = ","
	CustomFieldSeparator = "|"
	CustomPartSeparator  = ":"
	DateSeparator        = "-"

	// SubmittedDateLayout is the day-first layout produced by ReorderDate for
	// native yyyy-mm-dd input values.
	SubmittedDateLayout = "02-01-2006"
	// InputDateLayout is the native date input layout.
	InputDateLayout = "2006-01-02"
)

// CustomField describes a user-defined field row.
type CustomField struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// EncodeFeatures joins feature names in order. Duplicates are kept.
func EncodeFeatures(names []string) string {
	return strings.Join(names, FeatureSeparator)
}

// DecodeFeatures splits a carrier value, trimming entries and dropping empty
// ones.
func DecodeFeatures(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, FeatureSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// EncodeCustomField formats a single descriptor as label:name:type. Empty
// attributes produce empty segments.
func EncodeCustomField(field CustomField) string {
	return field.Label + CustomPartSeparator + field.Name + CustomPartSeparator + field.Type
}

// EncodeCustomFields joins descriptors with '|'.
func EncodeCustomFields(fields []CustomField) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = EncodeCustomField(field)
	}
	return strings.Join(parts, CustomFieldSeparator)
}

// DecodeCustomFields parses a carrier value. Blank items and items without
// three ':'-separated parts are skipped; extra ':' stay in the type segment.
func DecodeCustomFields(raw string) []CustomField {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []CustomField
	for _, item := range strings.Split(raw, CustomFieldSeparator) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, CustomPartSeparator, 3)
		if len(parts) != 3 {
			continue
		}
		out = append(out, CustomField{Label: parts[0], Name: parts[1], Type: parts[2]})
	}
	return out
}

// ReorderDate swaps the first and third hyphen-separated segments of value,
// turning yyyy-mm-dd into dd-mm-yyyy. Values without '-' are returned as is
// with ok=false. No calendar validation happens: "not-a-date-07" becomes
// "date-a-not", missing segments become empty and segments past the third are
// dropped.
func ReorderDate(value string) (string, bool) {
	if !strings.Contains(value, DateSeparator) {
		return value, false
	}
	parts := strings.Split(value, DateSeparator)
	segment := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	return segment(2) + DateSeparator + segment(1) + DateSeparator + segment(0), true
}

// ParseSubmittedDate parses a day-first submitted date. Blank or invalid
// values report ok=false.
func ParseSubmittedDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(SubmittedDateLayout, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// InputDate converts a stored day-first date into the native input layout.
// Values that do not parse are returned unchanged.
func InputDate(value string) string {
	parsed, ok := ParseSubmittedDate(value)
	if !ok {
		return value
	}
	return parsed.Format(InputDateLayout)
}

// StripCurrency removes the rupee sign, grouping commas and surrounding
// whitespace from a displayed amount.
func StripCurrency(display string) string {
	replacer := strings.NewReplacer("₹", "", ",", "", " ", "")
	return strings.TrimSpace(replacer.Replace(display))
}
