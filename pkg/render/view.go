package render

import (
	"sort"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/session"
)

// View is everything a renderer needs to draw the intake page.
type View struct {
	SessionID string
	Action    string
	Method    string
	// Categories lists the selectable categories, without the new-category
	// sentinel.
	Categories []string
	// Selected is the current selector value.
	Selected string
	// Category names the category whose controls are in Form.
	Category string
	Form     *formstate.Form
	// MasterFields feeds the feature checklist of the new-category form.
	MasterFields    []catalog.MasterField
	Checked         []string
	NewCategoryName string
	NewCategoryMode bool
	ShowStatus      bool
	SubmitEnabled   bool
	Hidden          []HiddenField
	Messages        []string
}

// ViewOption customises a snapshot.
type ViewOption func(*View)

// WithAction sets the form action and method.
func WithAction(action, method string) ViewOption {
	return func(v *View) {
		v.Action = action
		if method != "" {
			v.Method = method
		}
	}
}

// WithHidden appends hidden fields after the carriers.
func WithHidden(fields ...HiddenField) ViewOption {
	return func(v *View) {
		v.Hidden = append(v.Hidden, fields...)
	}
}

// WithCategories replaces the selectable categories.
func WithCategories(names []string) ViewOption {
	return func(v *View) {
		v.Categories = append([]string(nil), names...)
	}
}

// WithMessages attaches status messages.
func WithMessages(messages ...string) ViewOption {
	return func(v *View) {
		v.Messages = MergeMessages(v.Messages, messages...)
	}
}

// Snapshot captures the resolver state and the surface contents as a View.
func Snapshot(resolver *session.Resolver, surface *Surface, options ...ViewOption) View {
	st := resolver.State()
	cat := resolver.Catalog()

	view := View{
		SessionID:       st.ID,
		Method:          "POST",
		Categories:      categoryNames(cat, st),
		Selected:        st.Category,
		MasterFields:    cat.Fields(),
		Checked:         st.Draft.Checked(),
		NewCategoryName: st.Draft.Name,
		NewCategoryMode: st.NewCategoryMode(),
		ShowStatus:      st.Category != "" && !st.NewCategoryMode(),
		SubmitEnabled:   st.SubmitEnabled,
	}
	if surface != nil {
		view.Category = surface.Category()
		view.Form = surface.Form()
		view.MasterFields = surface.Localize(view.MasterFields)
	}
	view.Hidden = CarrierFields(view.Form)

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&view)
	}
	return view
}

func categoryNames(cat *catalog.Catalog, st *session.State) []string {
	seen := make(map[string]struct{})
	for _, name := range cat.Categories() {
		seen[name] = struct{}{}
	}
	for name := range st.Fields {
		seen[name] = struct{}{}
	}
	delete(seen, session.AddNewCategory)
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
