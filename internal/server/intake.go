package server

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/codec"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/session"
)

// Legacy field names that are treated as dates or amounts whatever their
// declared type.
var (
	legacyDateFields     = []string{"given_date", "purchase_date", "collected_date", "prev_given_date"}
	legacyCurrencyFields = []string{"amount", "total"}
)

// Record is a decoded asset submission.
type Record struct {
	Category string `json:"category"`
	NewType  bool   `json:"new_type"`
	// Fields is the field list the record was validated against.
	Fields []catalog.MasterField `json:"fields"`
	// Values holds one entry per allowed field plus the category.
	Values map[string]string `json:"values"`
}

type intakeRequest struct {
	Category string `validate:"required"`
	NewType  string `validate:"required_if=Category add_new_type"`
}

// FieldError names a rejected request attribute.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestError is a rejected intake or type payload.
type RequestError struct {
	Fields []FieldError
}

func (e *RequestError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("server: invalid request: %s", strings.Join(parts, "; "))
}

// Intake decodes asset submissions against the catalog and the type registry.
type Intake struct {
	catalog  *catalog.Catalog
	types    *TypeRegistry
	validate *validator.Validate
}

// NewIntake wires an intake decoder.
func NewIntake(cat *catalog.Catalog, types *TypeRegistry) *Intake {
	return &Intake{catalog: cat, types: types, validate: validator.New()}
}

// Decode turns a submitted form into a record. A new type is registered (or
// replaced) from the selected features, in catalog order, followed by the
// custom fields. Unknown submitted keys are dropped and every allowed field
// is present in the result.
func (in *Intake) Decode(values url.Values) (Record, error) {
	req := intakeRequest{
		Category: strings.TrimSpace(values.Get("category")),
		NewType:  strings.TrimSpace(values.Get("new_type")),
	}
	if err := in.validate.Struct(req); err != nil {
		return Record{}, translate(err)
	}

	record := Record{Category: req.Category}
	var fields []catalog.MasterField
	if req.Category == session.AddNewCategory {
		record.Category = req.NewType
		record.NewType = true

		var predefined []string
		for _, raw := range values[formstate.CarrierSelectedFeatures] {
			predefined = append(predefined, codec.DecodeFeatures(raw)...)
		}
		fields = in.catalog.Filter(predefined)
		for _, custom := range codec.DecodeCustomFields(values.Get(formstate.CarrierCustomFields)) {
			if strings.TrimSpace(custom.Name) == "" {
				continue
			}
			fields = append(fields, catalog.MasterField{
				Label: custom.Label,
				Name:  strings.TrimSpace(custom.Name),
				Type:  catalog.FieldType(custom.Type),
			})
		}
		if err := in.types.Upsert(record.Category, fields); err != nil {
			return Record{}, err
		}
	} else {
		fields, _ = in.types.Fields(req.Category)
	}

	record.Fields = fields
	record.Values = make(map[string]string, len(fields)+1)
	for _, field := range fields {
		record.Values[field.Name] = normalizeValue(field, values.Get(field.Name))
	}
	record.Values["category"] = record.Category
	return record, nil
}

func normalizeValue(field catalog.MasterField, raw string) string {
	switch {
	case field.Type == catalog.FieldTypeDate || contains(legacyDateFields, field.Name):
		if parsed, ok := codec.ParseSubmittedDate(raw); ok {
			return parsed.Format(codec.SubmittedDateLayout)
		}
		return raw
	case field.Type == catalog.FieldTypeCurrency || contains(legacyCurrencyFields, field.Name):
		if raw == "" {
			return raw
		}
		return strings.NewReplacer("₹", "", ",", "").Replace(raw)
	default:
		return raw
	}
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

func translate(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	out := &RequestError{}
	for _, fe := range validationErrs {
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "required_if":
			message = fmt.Sprintf("%s is required when %s", fe.Field(), fe.Param())
		case "min":
			message = fmt.Sprintf("%s must have at least %s item(s)", fe.Field(), fe.Param())
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message})
	}
	return out
}
