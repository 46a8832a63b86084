package jsonview_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/codec"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/jsonview"
)

func TestBuildExistingCategory(t *testing.T) {
	form := formstate.FromFields([]catalog.MasterField{
		{Name: "serial_no", Label: "Serial No.", Required: true},
		{Name: "amount", Label: "Amount", Type: catalog.FieldTypeCurrency},
	}, map[string]any{"serial_no": "SN-1", "amount": "1200"}, formstate.Options{})
	form.Custom(codec.CustomField{Label: "Size", Name: "size_cm", Type: "number"}, "14")

	payload := jsonview.Build(render.View{
		SessionID:  "s-1",
		Categories: []string{"laptop"},
		Selected:   "laptop",
		Category:   "laptop",
		Form:       form,
		MasterFields: []catalog.MasterField{
			{Name: "serial_no", Label: "Serial No."},
			{Name: "amount", Label: "Amount"},
		},
		ShowStatus:    true,
		SubmitEnabled: true,
		Hidden:        render.CarrierFields(form),
	})

	require.Equal(t, "POST", payload.Method)
	require.Equal(t, "add_new_type", payload.Sentinel)
	require.Nil(t, payload.NewCategory)

	names := make([]string, 0, len(payload.Controls))
	for _, c := range payload.Controls {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"serial_no", "amount", "size_cm"}, names); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "Serial No.", payload.Controls[0].Label)
	require.True(t, payload.Controls[0].Required)
	require.NotNil(t, payload.Controls[1].Raw)
	require.Equal(t, "1200", *payload.Controls[1].Raw)
	require.Equal(t, "Size", payload.Controls[2].Label)
	require.Equal(t, &codec.CustomField{Label: "Size", Name: "size_cm", Type: "number"}, payload.Controls[2].Custom)
}

func TestBuildNewCategoryFoldsChecklist(t *testing.T) {
	master := []catalog.MasterField{
		{Name: "serial_no", Label: "Serial No."},
		{Name: "ram", Label: "RAM"},
	}
	form := formstate.New()
	form.AddFeatureChecklist(master, []string{"ram"})

	payload := jsonview.Build(render.View{
		Selected:        "add_new_type",
		Form:            form,
		MasterFields:    master,
		Checked:         []string{"serial_no"},
		NewCategoryMode: true,
		NewCategoryName: "server",
	})

	require.Empty(t, payload.Controls)
	want := &jsonview.NewCategory{
		Name: "server",
		Features: []jsonview.Feature{
			{Name: "serial_no", Label: "Serial No.", Checked: true},
			{Name: "ram", Label: "RAM", Checked: true},
		},
	}
	if diff := cmp.Diff(want, payload.NewCategory); diff != "" {
		t.Fatalf("new category mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEncodesPayload(t *testing.T) {
	r := jsonview.New(jsonview.WithIndent("  "))
	require.Equal(t, "json", r.Name())
	require.Equal(t, "application/json", r.ContentType())

	out, err := r.Render(context.Background(), render.View{SessionID: "s-2"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.Equal(t, "s-2", got["session_id"])
	require.Equal(t, []any{}, got["categories"])
	require.Equal(t, []any{}, got["controls"])
	require.Equal(t, []any{}, got["hidden"])
	require.NotContains(t, got, "new_category")
}

func TestRenderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := jsonview.New().Render(ctx, render.View{})
	require.ErrorIs(t, err, context.Canceled)
}
