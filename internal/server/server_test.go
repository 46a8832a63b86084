package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dynform/internal/server"
	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/render"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.Replace([]catalog.MasterField{
		{Name: "serial_no", Label: "Serial No.", Type: catalog.FieldTypeText},
		{Name: "amount", Label: "Amount", Type: catalog.FieldTypeNumber},
		{Name: "purchase_date", Label: "Date of Purchase", Type: catalog.FieldTypeDate},
		{Name: "state", Label: "State", Type: catalog.FieldTypeSelect},
		{Name: "status", Label: "Status", Type: catalog.FieldTypeSelect, Options: []string{"available"}},
	}, map[string][]string{"laptop": {"serial_no", "purchase_date", "amount"}}))
	return cat
}

func newServer(t *testing.T) *server.Server {
	t.Helper()
	srv, err := server.New(context.Background(), newCatalog(t),
		server.WithDefaultOptions([]string{"Goa", "Kerala"}, []string{"Available"}),
	)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type fieldsBody struct {
	Fields []catalog.MasterField `json:"fields"`
}

type statusBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type assetBody struct {
	Success bool              `json:"success"`
	Record  map[string]string `json:"record"`
}

func TestMasterFieldsAndTypes(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/get_master_fields", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[fieldsBody](t, rec).Fields, 5)

	rec = do(t, h, http.MethodGet, "/get_asset_types", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	if diff := cmp.Diff([]string{"laptop"}, decode[[]string](t, rec)); diff != "" {
		t.Fatalf("asset types mismatch (-want +got):\n%s", diff)
	}
}

func TestGetFieldsAlwaysReturnsFieldsKey(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/get_fields/printer", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"fields": []}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/get_fields/laptop", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := catalog.FieldNames(decode[fieldsBody](t, rec).Fields)
	if diff := cmp.Diff([]string{"serial_no", "amount", "purchase_date"}, got); diff != "" {
		t.Fatalf("laptop fields mismatch (-want +got):\n%s", diff)
	}
}

func TestGetFieldsInjectsDefaultOptions(t *testing.T) {
	srv := newServer(t)
	require.NoError(t, srv.Types().Create("kiosk", []catalog.MasterField{
		{Name: "state", Type: catalog.FieldTypeSelect},
		{Name: "status", Type: catalog.FieldTypeSelect},
		{Name: "Status", Type: catalog.FieldTypeSelect, Options: []string{"kept"}},
	}))

	rec := do(t, srv.Handler(), http.MethodGet, "/get_fields/kiosk", "", "")
	fields := decode[fieldsBody](t, rec).Fields
	require.Equal(t, []string{"Goa", "Kerala"}, fields[0].Options)
	require.Equal(t, []string{"Available"}, fields[1].Options)
	require.Equal(t, []string{"kept"}, fields[2].Options)

	stored, ok := srv.Types().Fields("kiosk")
	require.True(t, ok)
	require.Empty(t, stored[0].Options, "defaults must not leak into the registry")
}

func TestCreateType(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/create_type", "application/json",
		`{"type": "printer", "fields": [{"name": "serial_no", "label": "Serial No.", "type": "text"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[statusBody](t, rec)
	require.True(t, body.Success)
	require.Equal(t, "Type created successfully.", body.Message)

	rec = do(t, h, http.MethodPost, "/create_type", "application/json",
		`{"type": "printer", "fields": [{"name": "x"}]}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Type already exists.", decode[statusBody](t, rec).Message)

	for _, payload := range []string{
		`{"type": "", "fields": [{"name": "x"}]}`,
		`{"type": "scanner", "fields": []}`,
		`{"type": "scanner", "fields": [{"label": "nameless"}]}`,
		`not json`,
	} {
		rec = do(t, h, http.MethodPost, "/create_type", "application/json", payload)
		require.Equal(t, http.StatusBadRequest, rec.Code, payload)
		require.Equal(t, "Type name and fields are required.", decode[statusBody](t, rec).Message)
	}
}

func TestCreateAssetExistingType(t *testing.T) {
	h := newServer(t).Handler()

	form := url.Values{
		"category":      {"laptop"},
		"serial_no":     {"SN-1"},
		"amount":        {"₹1,200"},
		"purchase_date": {"07-03-2024"},
		"unrelated":     {"dropped"},
	}
	rec := do(t, h, http.MethodPost, "/create_asset", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusCreated, rec.Code)

	want := map[string]string{
		"category":      "laptop",
		"serial_no":     "SN-1",
		"amount":        "1200",
		"purchase_date": "07-03-2024",
	}
	if diff := cmp.Diff(want, decode[assetBody](t, rec).Record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateAssetNewType(t *testing.T) {
	srv := newServer(t)
	h := srv.Handler()

	form := url.Values{
		"category":          {"add_new_type"},
		"new_type":          {" scanner "},
		"selected_features": {"purchase_date,serial_no"},
		"custom_fields":     {"Size:size_cm:number|broken"},
		"serial_no":         {"SN-7"},
		"size_cm":           {"14"},
	}
	rec := do(t, h, http.MethodPost, "/create_asset", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusCreated, rec.Code)

	want := map[string]string{
		"category":      "scanner",
		"serial_no":     "SN-7",
		"purchase_date": "",
		"size_cm":       "14",
	}
	if diff := cmp.Diff(want, decode[assetBody](t, rec).Record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	fields, ok := srv.Types().Fields("scanner")
	require.True(t, ok)
	if diff := cmp.Diff([]string{"serial_no", "purchase_date", "size_cm"}, catalog.FieldNames(fields)); diff != "" {
		t.Fatalf("registered fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateAssetRejectsMissingCategory(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/create_asset", "application/x-www-form-urlencoded", "serial_no=SN-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/create_asset", "application/x-www-form-urlencoded", "category=add_new_type")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "NewType")
}

func TestFormRendersSelectedType(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/form?type=laptop", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	markup := rec.Body.String()
	require.Contains(t, markup, `<option value="laptop" selected>laptop</option>`)
	require.Contains(t, markup, `name="serial_no"`)
	require.Contains(t, markup, `type="date" id="purchase_date"`)
	require.Contains(t, markup, `action="/create_asset"`)

	rec = do(t, h, http.MethodGet, "/form?type=printer", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Unknown asset type: printer")

	rec = do(t, h, http.MethodGet, "/form?type=add_new_type", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `<div id="new-type-wrapper" class="dynform__row">`)
}

func TestFormNegotiatesJSON(t *testing.T) {
	h := newServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/form?type=laptop", nil)
	req.Header.Set("Accept", "application/json, text/html;q=0.8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	type control struct {
		Name string `json:"name"`
	}
	type payload struct {
		Category      string    `json:"category"`
		SubmitEnabled bool      `json:"submit_enabled"`
		Controls      []control `json:"controls"`
	}
	got := decode[payload](t, rec)
	require.Equal(t, "laptop", got.Category)
	names := make([]string, 0, len(got.Controls))
	for _, c := range got.Controls {
		names = append(names, c.Name)
	}
	require.Contains(t, names, "serial_no")
	require.Contains(t, names, "purchase_date")

	rec = do(t, h, http.MethodGet, "/form?type=laptop&format=json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "laptop", decode[payload](t, rec).Category)

	req = httptest.NewRequest(http.MethodGet, "/form?type=laptop", nil)
	req.Header.Set("Accept", "*/*")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = do(t, h, http.MethodGet, "/form?format=pdf", "", "")
	require.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestEditFormPrefillsRecord(t *testing.T) {
	h := newServer(t).Handler()
	record := `{"category":"laptop","serial_no":"SN-7","purchase_date":"07-03-2024","amount":"1500"}`

	rec := do(t, h, http.MethodPost, "/form?format=json", "application/json", record)
	require.Equal(t, http.StatusOK, rec.Code)

	type control struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	type payload struct {
		Category string    `json:"category"`
		Selected string    `json:"selected"`
		Controls []control `json:"controls"`
	}
	got := decode[payload](t, rec)
	require.Equal(t, "laptop", got.Category)
	require.Equal(t, "laptop", got.Selected)

	values := map[string]string{}
	for _, c := range got.Controls {
		values[c.Name] = c.Value
	}
	require.Equal(t, "SN-7", values["serial_no"])
	require.Equal(t, "2024-03-07", values["purchase_date"])
	require.Equal(t, "1500", values["amount"])

	rec = do(t, h, http.MethodPost, "/form", "application/json", record)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "SN-7")

	rec = do(t, h, http.MethodPost, "/form", "application/json", `{"category":"printer"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/form", "application/json", `[]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type textRenderer struct{}

func (textRenderer) Name() string        { return "text" }
func (textRenderer) ContentType() string { return "text/plain; charset=utf-8" }
func (textRenderer) Render(_ context.Context, view render.View) ([]byte, error) {
	return []byte("category=" + view.Category), nil
}

func TestWithRendererBecomesDefault(t *testing.T) {
	srv, err := server.New(context.Background(), newCatalog(t), server.WithRenderer(textRenderer{}))
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"html", "json", "text"}, srv.Renderers().List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}

	rec := do(t, srv.Handler(), http.MethodGet, "/form?type=laptop", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "category=laptop", rec.Body.String())

	rec = do(t, srv.Handler(), http.MethodGet, "/form?type=laptop&format=html", "", "")
	require.Contains(t, rec.Body.String(), `name="serial_no"`)
}

func TestRouteDocument(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/openapi.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decode[map[string]any](t, rec)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, path := range []string{"/get_master_fields", "/get_asset_types", "/get_fields/{type}", "/create_type", "/form", "/create_asset"} {
		require.Contains(t, paths, path)
	}
}

func TestHealthz(t *testing.T) {
	rec := do(t, newServer(t).Handler(), http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
