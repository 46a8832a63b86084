// Package server exposes the intake endpoints: the master field catalog, the
// asset type registry, the server-rendered form and asset submission.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/html"
	"github.com/goliatone/go-dynform/pkg/renderers/jsonview"
)

// DefaultStatusOptions fill a "status" select that ships without options.
var DefaultStatusOptions = []string{"Available", "Assigned", "Repair/Faulty", "Discard"}

// DefaultStateOptions fill a "state" select that ships without options.
var DefaultStateOptions = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand",
	"Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra", "Manipur",
	"Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab",
	"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura",
	"Uttar Pradesh", "Uttarakhand", "West Bengal",
	"Andaman and Nicobar Islands", "Chandigarh", "Dadra and Nagar Haveli and Daman and Diu",
	"Delhi", "Jammu and Kashmir", "Ladakh", "Lakshadweep", "Puducherry",
}

// Option configures a Server.
type Option func(*Server)

// WithLogger routes request and intake logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRenderer registers an extra form renderer. The first renderer
// registered becomes the default for /form.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.pending = append(s.pending, renderer)
		}
	}
}

// WithTypes shares an existing type registry.
func WithTypes(types *TypeRegistry) Option {
	return func(s *Server) {
		if types != nil {
			s.types = types
		}
	}
}

// WithFormOptions tunes how rendered controls are pre-filled.
func WithFormOptions(opts formstate.Options) Option {
	return func(s *Server) {
		s.formOpts = opts
	}
}

// WithDefaultOptions overrides the options injected into empty "state" and
// "status" selects.
func WithDefaultOptions(states, statuses []string) Option {
	return func(s *Server) {
		s.stateOptions = append([]string(nil), states...)
		s.statusOptions = append([]string(nil), statuses...)
	}
}

// Server holds the intake handlers. The catalog is only read after
// construction and may be shared across requests.
type Server struct {
	catalog       *catalog.Catalog
	types         *TypeRegistry
	intake        *Intake
	renderers     *render.Registry
	pending       []render.Renderer
	validate      *validator.Validate
	logger        *slog.Logger
	formOpts      formstate.Options
	stateOptions  []string
	statusOptions []string
	routeDoc      *openapi3.T
	router        chi.Router
}

// New builds the server and its routes. Predefined catalog categories are
// registered as asset types.
func New(ctx context.Context, cat *catalog.Catalog, options ...Option) (*Server, error) {
	if cat == nil {
		return nil, errors.New("server: catalog is required")
	}
	s := &Server{
		catalog:       cat,
		validate:      validator.New(),
		stateOptions:  DefaultStateOptions,
		statusOptions: DefaultStatusOptions,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.logger = logging.OrDiscard(s.logger)
	if s.types == nil {
		s.types = NewTypeRegistry()
	}
	if err := s.types.Seed(ctx, cat); err != nil {
		return nil, fmt.Errorf("server: seed types: %w", err)
	}
	if err := s.registerRenderers(); err != nil {
		return nil, err
	}
	routeDoc, err := buildRouteDocument(ctx)
	if err != nil {
		return nil, err
	}
	s.routeDoc = routeDoc
	s.intake = NewIntake(cat, s.types)
	s.router = s.routes()
	return s, nil
}

func (s *Server) registerRenderers() error {
	s.renderers = render.NewRegistry()
	for _, renderer := range s.pending {
		if err := s.renderers.Register(renderer); err != nil {
			return fmt.Errorf("server: register renderer: %w", err)
		}
	}
	s.pending = nil
	if !s.renderers.Has("html") {
		renderer, err := html.New()
		if err != nil {
			return fmt.Errorf("server: configure renderer: %w", err)
		}
		s.renderers.MustRegister(renderer)
	}
	if !s.renderers.Has("json") {
		s.renderers.MustRegister(jsonview.New())
	}
	return nil
}

// Renderers exposes the form renderers keyed by name.
func (s *Server) Renderers() *render.Registry {
	return s.renderers
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Types exposes the asset type registry.
func (s *Server) Types() *TypeRegistry {
	return s.types
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/openapi.json", s.handleRouteDocument)
	r.Get("/get_master_fields", s.handleMasterFields)
	r.Get("/get_asset_types", s.handleAssetTypes)
	r.Get("/get_fields/{type}", s.handleFields)
	r.Post("/create_type", s.handleCreateType)
	r.Get("/form", s.handleForm)
	r.Post("/form", s.handleEditForm)
	r.Post("/create_asset", s.handleCreateAsset)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// CategoryFields resolves an asset type with default select options applied.
func (s *Server) CategoryFields(ctx context.Context, category string) ([]catalog.MasterField, bool, error) {
	fields, ok, err := s.types.CategoryFields(ctx, category)
	if err != nil || !ok {
		return fields, ok, err
	}
	return s.withDefaultOptions(fields), true, nil
}

func (s *Server) withDefaultOptions(fields []catalog.MasterField) []catalog.MasterField {
	for i := range fields {
		field := &fields[i]
		if field.Type != catalog.FieldTypeSelect || len(field.Options) > 0 {
			continue
		}
		switch strings.ToLower(field.Name) {
		case "state":
			field.Options = append([]string(nil), s.stateOptions...)
		case "status":
			field.Options = append([]string(nil), s.statusOptions...)
		}
	}
	return fields
}
