// Package dynform exposes the high-level entry points for building dynamic
// category forms: catalog loading, session wiring and the embedded defaults.
package dynform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	loader "github.com/goliatone/go-dynform/internal/catalog/loader"
	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/session"
	"github.com/goliatone/go-dynform/pkg/submission"
)

// DefaultRequestTimeout bounds remote catalog fetches opened through
// OpenCatalog.
const DefaultRequestTimeout = 10 * time.Second

// MasterField aliases catalog.MasterField for callers that only import the
// root package.
type MasterField = catalog.MasterField

// Submission aliases the normalized payload type.
type Submission = submission.Submission

// NewLoader returns the default catalog loader that supports file, fs.FS and
// HTTP sources.
func NewLoader(options ...catalog.LoaderOption) catalog.Loader {
	cfg := catalog.NewLoaderOptions(options...)
	return loader.New(cfg)
}

// NewCatalog constructs an empty catalog backed by the default loader.
func NewCatalog(logger *slog.Logger, options ...catalog.LoaderOption) *catalog.Catalog {
	return catalog.New(
		catalog.WithLoader(NewLoader(options...)),
		catalog.WithLogger(logger),
	)
}

// ResolveSource maps a location to a catalog source: blank selects the
// embedded catalog, http(s) URLs are fetched remotely and anything else is
// read from disk.
func ResolveSource(location string) (catalog.Source, error) {
	trimmed := strings.TrimSpace(location)
	switch {
	case trimmed == "":
		return DefaultCatalogSource(), nil
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return catalog.SourceFromURL(trimmed)
	default:
		return catalog.SourceFromFile(trimmed), nil
	}
}

// OpenCatalog resolves location, loads it and returns the populated catalog.
// The embedded catalog is always reachable and remote fetches use
// DefaultRequestTimeout unless options override it.
func OpenCatalog(ctx context.Context, location string, logger *slog.Logger, options ...catalog.LoaderOption) (*catalog.Catalog, error) {
	src, err := ResolveSource(location)
	if err != nil {
		return nil, err
	}
	opts := []catalog.LoaderOption{catalog.WithFileSystem(DefaultCatalogFS())}
	if src.Kind() == catalog.SourceKindURL {
		opts = append(opts, catalog.WithHTTPFallback(DefaultRequestTimeout))
	}
	opts = append(opts, options...)

	cat := NewCatalog(logger, opts...)
	if _, err := cat.Load(ctx, src); err != nil {
		return nil, err
	}
	return cat, nil
}

// NewSession wires a Resolver to a fresh form Surface. The surface receives
// every render and backs the submit gate's validity check; predefined catalog
// categories resolve through the catalog unless options install another
// lookup.
func NewSession(cat *catalog.Catalog, opts formstate.Options, options ...session.Option) (*session.Resolver, *render.Surface) {
	surface := render.NewSurface(opts)
	all := []session.Option{session.WithValidity(surface)}
	if cat != nil {
		all = append(all, session.WithLookup(cat))
	}
	all = append(all, options...)
	return session.New(cat, surface, all...), surface
}

// LoadRecord decodes an edit-mode record from a JSON object file.
func LoadRecord(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dynform: read record: %w", err)
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("dynform: decode record %q: %w", path, err)
	}
	if record == nil {
		return nil, fmt.Errorf("dynform: record %q is not an object", path)
	}
	return record, nil
}

// StartSession builds a session over cat and runs Resolver.Start against src.
// A non-nil record opens the session in edit mode: the fields of its category
// are resolved through cat and rendered once the catalog load completes.
func StartSession(ctx context.Context, cat *catalog.Catalog, src catalog.Source, record map[string]any, opts formstate.Options, options ...session.Option) (*session.Resolver, *render.Surface, error) {
	if cat == nil {
		return nil, nil, errors.New("dynform: catalog is required")
	}
	if record != nil {
		boot, err := session.BootstrapFromRecord(ctx, cat, record)
		if err != nil {
			return nil, nil, err
		}
		options = append(options, boot)
	}
	resolver, surface := NewSession(cat, opts, options...)
	if err := resolver.Start(ctx, src); err != nil {
		return nil, nil, err
	}
	return resolver, surface, nil
}

// Normalize runs the default normalizer over the surface's current form.
func Normalize(surface *render.Surface, options ...submission.Option) Submission {
	if surface == nil {
		return Submission{}
	}
	return submission.New(options...).Normalize(surface.Form())
}
