package formstate_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/codec"
	"github.com/goliatone/go-dynform/pkg/formstate"
)

func ptr(s string) *string { return &s }

func TestFromFieldsPrefillsControls(t *testing.T) {
	fields := []catalog.MasterField{
		{Name: "serial_no", Type: catalog.FieldTypeText, Required: true},
		{Name: "purchase_date", Type: catalog.FieldTypeDate},
		{Name: "amount", Type: catalog.FieldTypeCurrency},
		{Name: "state", Type: catalog.FieldTypeSelect, Options: []string{"Goa"}},
		{Name: "ram", Type: catalog.FieldTypeNumber},
	}
	existing := map[string]any{
		"serial_no":     "SN-1",
		"purchase_date": "07-03-2024",
		"amount":        "₹1,200",
		"ram":           16,
	}

	form := formstate.FromFields(fields, existing, formstate.Options{})
	controls := form.Controls()
	if len(controls) != len(fields) {
		t.Fatalf("expected %d controls, got %d", len(fields), len(controls))
	}

	got := map[string]string{}
	for _, c := range controls {
		got[c.Name] = string(c.Kind) + "=" + c.Value
	}
	want := map[string]string{
		"serial_no":     "text=SN-1",
		"purchase_date": "date=2024-03-07",
		"state":         "select=",
		"ram":           "number=16",
	}
	amount := got["amount"]
	delete(got, "amount")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(amount, "currency="+formstate.DefaultCurrencySymbol) {
		t.Fatalf("currency display should carry the symbol, got %q", amount)
	}

	c, ok := form.Find("amount")
	if !ok || c.Raw == nil || *c.Raw != "1200" {
		t.Fatalf("expected raw amount 1200, got %+v", c)
	}
}

func TestValidRequiresRequiredValues(t *testing.T) {
	form := formstate.FromFields([]catalog.MasterField{{Name: "serial_no", Required: true}}, nil, formstate.Options{})
	if form.Valid() {
		t.Fatal("empty required field should be invalid")
	}
	form.Set("serial_no", "SN-1")
	if !form.Valid() {
		t.Fatal("filled required field should be valid")
	}
}

func TestFeatureChecklistAndCheck(t *testing.T) {
	form := formstate.New()
	form.AddFeatureChecklist([]catalog.MasterField{{Name: "a"}, {Name: "b"}}, []string{"b"})

	if !form.Check(formstate.FeatureCheckboxName, "a", true) {
		t.Fatal("expected checkbox a to exist")
	}
	var checked []string
	for _, c := range form.Controls() {
		if c.Kind == formstate.KindCheckbox && c.Checked {
			checked = append(checked, c.Value)
		}
	}
	if diff := cmp.Diff([]string{"a", "b"}, checked); diff != "" {
		t.Fatalf("checked mismatch (-want +got):\n%s", diff)
	}
}

func TestSetCurrencyKeepsRawInSync(t *testing.T) {
	form := formstate.New()
	form.Currency("total", "", "")
	form.SetCurrency("total", "₹ 2,500")

	c, _ := form.Find("total")
	if diff := cmp.Diff(ptr("2500"), c.Raw); diff != "" {
		t.Fatalf("raw mismatch (-want +got):\n%s", diff)
	}
	if c.Value != "₹ 2,500" {
		t.Fatalf("display should be kept, got %q", c.Value)
	}
}

func TestCarriersAndCustomRows(t *testing.T) {
	form := formstate.New()
	if diff := cmp.Diff([]string{formstate.CarrierSelectedFeatures, formstate.CarrierCustomFields}, form.CarrierNames()); diff != "" {
		t.Fatalf("carriers mismatch (-want +got):\n%s", diff)
	}
	form.SetCarrier(formstate.CarrierCustomFields, "x")
	if v, ok := form.Carrier(formstate.CarrierCustomFields); !ok || v != "x" {
		t.Fatalf("unexpected carrier %q", v)
	}

	c := form.Custom(codec.CustomField{Label: "Size", Name: "size_cm", Type: "number"}, "12")
	if c.Kind != formstate.KindNumber || c.Custom == nil {
		t.Fatalf("unexpected custom control %+v", c)
	}
	if form.Remove("size_cm") != 1 || form.Len() != 0 {
		t.Fatal("expected custom control removal")
	}
}
