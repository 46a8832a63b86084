package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-dynform/pkg/catalog"
)

// AddNewCategory is the category selector value that switches the form into
// new-category definition mode.
const AddNewCategory = "add_new_type"

// CategoryFieldMap maps a category name to its ordered field list.
type CategoryFieldMap map[string][]catalog.MasterField

// Lookup returns a copy of the fields mapped to category.
func (m CategoryFieldMap) Lookup(category string) ([]catalog.MasterField, bool) {
	fields, ok := m[category]
	if !ok {
		return nil, false
	}
	return catalog.CloneFields(fields), true
}

// State is the page state shared between the resolver, the field renderer and
// the submission normalizer.
type State struct {
	ID string
	// Category is the value currently selected in the category selector.
	Category string
	// LastRendered names the category whose fields were drawn most recently.
	LastRendered string
	// PendingFields holds the field list awaiting submission for a new or
	// bootstrapped category.
	PendingFields []catalog.MasterField
	// Existing is the edit-mode record handed over at page load. It is
	// consumed by the first render.
	Existing map[string]any
	Fields   CategoryFieldMap
	// SubmitEnabled mirrors the submit button state after the last validity
	// check.
	SubmitEnabled bool
	Draft         Draft
}

// NewState returns an empty state with a fresh session identifier.
func NewState() *State {
	return &State{
		ID:     uuid.NewString(),
		Fields: make(CategoryFieldMap),
	}
}

// NewCategoryMode reports whether the sentinel category is selected.
func (s *State) NewCategoryMode() bool {
	return s != nil && s.Category == AddNewCategory
}

// Draft is the ephemeral selection made while defining a new category.
type Draft struct {
	checked []string
	Name    string
}

// Toggle checks or unchecks a master field name. Checked order is preserved.
func (d *Draft) Toggle(name string, on bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	idx := -1
	for i, existing := range d.checked {
		if existing == name {
			idx = i
			break
		}
	}
	switch {
	case on && idx < 0:
		d.checked = append(d.checked, name)
	case !on && idx >= 0:
		d.checked = append(d.checked[:idx], d.checked[idx+1:]...)
	}
}

// Checked returns the checked field names.
func (d *Draft) Checked() []string {
	return append([]string(nil), d.checked...)
}

// IsChecked reports whether name is checked.
func (d *Draft) IsChecked(name string) bool {
	for _, existing := range d.checked {
		if existing == name {
			return true
		}
	}
	return false
}

// Reset clears the draft.
func (d *Draft) Reset() {
	d.checked = nil
	d.Name = ""
}
