package catalog

// FieldType enumerates the widget kinds a master field can request.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeCurrency FieldType = "currency"
	FieldTypeSelect   FieldType = "select"
	FieldTypeDatalist FieldType = "datalist"
)

// MasterField is a globally defined candidate field that any category may
// include. Name is the unique key used by checkboxes, carriers and category
// maps.
type MasterField struct {
	Name     string            `json:"name" yaml:"name" validate:"required"`
	Label    string            `json:"label" yaml:"label"`
	Type     FieldType         `json:"type" yaml:"type"`
	Options  []string          `json:"options,omitempty" yaml:"options,omitempty"`
	Required bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// DisplayLabel returns Label, falling back to Name when no label is set.
func (f MasterField) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Clone returns a copy that shares no slices or maps with f.
func (f MasterField) Clone() MasterField {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.Metadata != nil {
		out.Metadata = make(map[string]string, len(f.Metadata))
		for k, v := range f.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// CloneFields copies a field list element by element. A nil input stays nil.
func CloneFields(fields []MasterField) []MasterField {
	if fields == nil {
		return nil
	}
	out := make([]MasterField, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []MasterField) []string {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name
	}
	return names
}
