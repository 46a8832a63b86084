package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/session"
)

type stubRenderer struct {
	name  string
	ctype string
}

func (s stubRenderer) Name() string { return s.name }

func (s stubRenderer) ContentType() string {
	if s.ctype == "" {
		return "text/plain"
	}
	return s.ctype
}
func (s stubRenderer) Render(context.Context, render.View) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	reg := render.NewRegistry()
	require.NoError(t, reg.Register(stubRenderer{name: "html"}))
	require.NoError(t, reg.Register(stubRenderer{name: "tui"}))
	require.Error(t, reg.Register(stubRenderer{name: "html"}))
	require.Error(t, reg.Register(stubRenderer{name: " "}))
	require.Error(t, reg.Register(nil))

	if diff := cmp.Diff([]string{"html", "tui"}, reg.List()); diff != "" {
		t.Fatalf("registry names mismatch (-want +got):\n%s", diff)
	}

	fallback, err := reg.Get("")
	require.NoError(t, err)
	require.Equal(t, "html", fallback.Name())

	_, err = reg.Get("preact")
	require.Error(t, err)
	require.True(t, reg.Has("tui"))
}

func TestRegistryNegotiate(t *testing.T) {
	reg := render.NewRegistry()
	_, err := reg.Negotiate("text/html")
	require.Error(t, err)

	reg.MustRegister(stubRenderer{name: "html", ctype: "text/html; charset=utf-8"})
	reg.MustRegister(stubRenderer{name: "json", ctype: "application/json"})

	cases := []struct {
		accept string
		want   string
	}{
		{accept: "", want: "html"},
		{accept: "application/json", want: "json"},
		{accept: "application/xml, application/json;q=0.9", want: "json"},
		{accept: "text/html,application/xhtml+xml,*/*;q=0.8", want: "html"},
		{accept: "*/*", want: "html"},
		{accept: "image/png", want: "html"},
		{accept: "text/html;q=0, application/json", want: "json"},
		{accept: "text/html;q=0.5, application/json;q=0.9", want: "json"},
		{accept: "text/html, application/json", want: "html"},
		{accept: "application/*;q=0.8, text/html;q=0.2", want: "json"},
		{accept: "text/html;q=bogus, application/json;q=0.1", want: "json"},
	}
	for _, tc := range cases {
		got, err := reg.Negotiate(tc.accept)
		require.NoError(t, err, tc.accept)
		require.Equal(t, tc.want, got.Name(), tc.accept)
	}
}

func TestMergeAndSortHiddenFields(t *testing.T) {
	merged := render.MergeHiddenFields(
		map[string]string{" session ": "abc", "": "ignored"},
		render.Hidden("version", 4),
		render.Hidden("  ", "skip"),
		render.Hidden("session", "override"),
	)
	want := []render.HiddenField{
		{Name: "session", Value: "override"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(want, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCarrierFieldsFollowDeclarationOrder(t *testing.T) {
	form := formstate.New()
	form.SetCarrier(formstate.CarrierCustomFields, "Size:size_cm:number")

	want := []render.HiddenField{
		{Name: formstate.CarrierSelectedFeatures, Value: ""},
		{Name: formstate.CarrierCustomFields, Value: "Size:size_cm:number"},
	}
	if diff := cmp.Diff(want, render.CarrierFields(form)); diff != "" {
		t.Fatalf("carriers mismatch (-want +got):\n%s", diff)
	}
	require.Nil(t, render.CarrierFields(nil))
}

func TestMergeMessages(t *testing.T) {
	got := render.MergeMessages([]string{" saved ", ""}, "saved", "Please enter a name for the new type.")
	want := []string{"saved", "Please enter a name for the new type."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSurfaceDrivesSessionAndSnapshot(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Replace([]catalog.MasterField{
		{Name: "serial_no", Label: "Serial No.", Required: true},
		{Name: "amount", Label: "Amount", Type: catalog.FieldTypeCurrency},
		{Name: "purchase_date", Label: "Date of Purchase", Type: catalog.FieldTypeDate},
	}, map[string][]string{"laptop": {"serial_no", "purchase_date"}}))

	surface := render.NewSurface(formstate.Options{})
	resolver := session.New(cat, surface,
		session.WithLookup(cat),
		session.WithValidity(surface),
	)

	decision, err := resolver.SelectCategory(context.Background(), "laptop")
	require.NoError(t, err)
	require.True(t, decision.Rendered)
	require.False(t, decision.SubmitEnabled, "required serial number is still blank")
	require.Equal(t, 1, surface.Renders())

	require.True(t, surface.Form().Set("serial_no", "SN-1"))
	require.True(t, resolver.Recheck())

	require.NoError(t, resolver.PromoteNewCategory(context.Background(), []string{"amount"}, "printer"))

	view := render.Snapshot(resolver, surface, render.WithAction("/create_asset", ""), render.WithMessages("saved"))
	if diff := cmp.Diff([]string{"laptop", "printer"}, view.Categories); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "printer", view.Category)
	require.Equal(t, "laptop", view.Selected)
	require.Equal(t, "POST", view.Method)
	require.Equal(t, "/create_asset", view.Action)
	require.True(t, view.SubmitEnabled)
	require.True(t, view.ShowStatus)
	require.Len(t, view.Hidden, 2)
	require.Equal(t, []string{"saved"}, view.Messages)

	control, ok := view.Form.Find("amount")
	require.True(t, ok)
	require.Equal(t, formstate.KindCurrency, control.Kind)
}

func TestLocalizerTranslatesLabelsAndOptions(t *testing.T) {
	translations := map[string]string{
		"fields.status":          "Estado",
		"status.available":       "Disponible",
		"fields.serial_no.label": "",
	}
	var missing []string
	l := &render.Localizer{
		Locale: "es",
		Translator: render.TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
			require.Equal(t, "es", locale)
			return translations[key], nil
		}),
		OnMissing: func(_, key, fallback string, _ error) string {
			missing = append(missing, key)
			return fallback
		},
	}

	fields := []catalog.MasterField{
		{
			Name:     "status",
			Label:    "Status",
			Type:     catalog.FieldTypeSelect,
			Options:  []string{"available", "discard"},
			Metadata: map[string]string{render.LabelKeyMetadata: "fields.status", render.OptionKeyPrefixMetadata: "status."},
		},
		{Name: "serial_no", Label: "Serial No.", Metadata: map[string]string{render.LabelKeyMetadata: "fields.serial_no.label"}},
		{Name: "model", Label: "Model"},
	}
	got := l.Fields(fields)

	require.Equal(t, "Estado", got[0].Label)
	require.Equal(t, "Serial No.", got[1].Label)
	require.Equal(t, "Model", got[2].Label)
	if diff := cmp.Diff(map[string]string{"available": "Disponible", "discard": "discard"}, render.OptionLabels(got[0])); diff != "" {
		t.Fatalf("option labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"status.discard", "fields.serial_no.label"}, missing); diff != "" {
		t.Fatalf("missing keys mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "Status", fields[0].Label, "input must not be mutated")
	require.Empty(t, fields[0].Metadata[render.OptionLabelsMetadata])
}

func TestLocalizerWithoutTranslatorFallsBack(t *testing.T) {
	l := &render.Localizer{}
	got := l.Fields([]catalog.MasterField{
		{Name: "area", Metadata: map[string]string{render.LabelKeyMetadata: "fields.area"}},
		{Name: "remarks", Label: "Remarks", Metadata: map[string]string{render.LabelKeyMetadata: "fields.remarks"}},
	})
	require.Equal(t, "fields.area", got[0].Label)
	require.Equal(t, "Remarks", got[1].Label)

	var nilLocalizer *render.Localizer
	require.Len(t, nilLocalizer.Fields([]catalog.MasterField{{Name: "x"}}), 1)
}

func TestSurfaceLocalizesRenderedFields(t *testing.T) {
	surface := render.NewSurface(formstate.Options{}, render.WithLocalizer(&render.Localizer{
		Translator: render.TranslatorFunc(func(_, key string, _ ...any) (string, error) {
			return "Número de serie", nil
		}),
	}))
	require.NoError(t, surface.RenderFields("laptop", []catalog.MasterField{
		{Name: "serial_no", Label: "Serial No.", Metadata: map[string]string{render.LabelKeyMetadata: "fields.serial_no"}},
	}, map[string]any{}))
	require.Equal(t, "Número de serie", surface.Fields()[0].Label)
	_, ok := surface.Form().Find("serial_no")
	require.True(t, ok)
}
