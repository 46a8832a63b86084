package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-dynform/pkg/catalog"
)

const payload = `{"fields":[{"name":"serial_no","label":"Serial No.","type":"text"}]}`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := New(catalog.NewLoaderOptions())
	data, err := l.Load(context.Background(), catalog.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestLoadFS(t *testing.T) {
	files := fstest.MapFS{"catalog/fields.json": {Data: []byte(payload)}}
	l := New(catalog.NewLoaderOptions(catalog.WithFileSystem(files)))

	data, err := l.Load(context.Background(), catalog.SourceFromFS("catalog/fields.json"))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestLoadFSRequiresFileSystem(t *testing.T) {
	l := New(catalog.NewLoaderOptions())
	if _, err := l.Load(context.Background(), catalog.SourceFromFS("fields.json")); err == nil {
		t.Fatal("expected error without fs")
	}
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_master_fields" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	l := New(catalog.NewLoaderOptions(catalog.WithHTTPFallback(time.Second)))
	data, err := l.Load(context.Background(), catalog.MustSourceFromURL(srv.URL+"/get_master_fields"))
	if err != nil {
		t.Fatalf("load http: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestLoadHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := New(catalog.NewLoaderOptions(catalog.WithHTTPClient(srv.Client())))
	if _, err := l.Load(context.Background(), catalog.MustSourceFromURL(srv.URL)); err == nil {
		t.Fatal("expected status error")
	}
}

func TestLoadHTTPDisabled(t *testing.T) {
	l := New(catalog.NewLoaderOptions())
	if _, err := l.Load(context.Background(), catalog.MustSourceFromURL("http://example.invalid/fields")); err == nil {
		t.Fatal("expected http disabled error")
	}
}
