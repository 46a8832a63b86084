package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/session"
)

const maxBodyBytes = 1 << 20

type fieldsResponse struct {
	Fields []catalog.MasterField `json:"fields"`
}

type statusResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type assetResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Record  map[string]string `json:"record"`
}

type createTypeRequest struct {
	Type   string                `json:"type" validate:"required"`
	Fields []catalog.MasterField `json:"fields" validate:"required,min=1,dive"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleMasterFields(w http.ResponseWriter, _ *http.Request) {
	fields := s.catalog.Fields()
	if fields == nil {
		fields = []catalog.MasterField{}
	}
	writeJSON(w, http.StatusOK, fieldsResponse{Fields: fields})
}

func (s *Server) handleAssetTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.types.Names())
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	fields, ok, err := s.CategoryFields(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		s.logger.Error("resolve asset type failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal server error"})
		return
	}
	if !ok || fields == nil {
		fields = []catalog.MasterField{}
	}
	writeJSON(w, http.StatusOK, fieldsResponse{Fields: fields})
}

func (s *Server) handleCreateType(w http.ResponseWriter, r *http.Request) {
	var req createTypeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Type name and fields are required."})
		return
	}
	req.Type = strings.TrimSpace(req.Type)
	if err := s.validate.Struct(req); err != nil {
		resp := statusResponse{Message: "Type name and fields are required."}
		var reqErr *RequestError
		if errors.As(translate(err), &reqErr) {
			resp.Errors = reqErr.Fields
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	if err := s.types.Create(req.Type, req.Fields); err != nil {
		if errors.Is(err, ErrTypeExists) {
			writeJSON(w, http.StatusConflict, statusResponse{Message: "Type already exists."})
			return
		}
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Type name and fields are required."})
		return
	}
	s.logger.Info("asset type created", "type", req.Type, "fields", catalog.FieldNames(req.Fields))
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Type created successfully."})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("type"))
	surface := render.NewSurface(s.formOpts)
	resolver := s.newResolver(surface)

	var messages []string
	if category != "" {
		if _, err := resolver.SelectCategory(r.Context(), category); err != nil {
			s.logger.Error("render form failed", "type", category, "error", err)
			http.Error(w, "failed to render form", http.StatusInternalServerError)
			return
		}
		if category != session.AddNewCategory {
			if _, ok := s.types.Fields(category); !ok {
				messages = append(messages, "Unknown asset type: "+category)
			}
		}
	}
	s.writeForm(w, r, resolver, surface, messages)
}

// handleEditForm renders the form of an existing record posted as a JSON
// object. The record's category selects the fields and its values pre-fill
// them.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	var record map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&record); err != nil || record == nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "A JSON record is required."})
		return
	}
	boot, err := session.BootstrapFromRecord(r.Context(), s, record)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: err.Error()})
		return
	}

	surface := render.NewSurface(s.formOpts)
	resolver := s.newResolver(surface, boot)
	if _, err := resolver.Bootstrap(r.Context()); err != nil {
		s.logger.Error("render edit form failed", "error", err)
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	s.writeForm(w, r, resolver, surface, nil)
}

func (s *Server) newResolver(surface *render.Surface, options ...session.Option) *session.Resolver {
	base := []session.Option{
		session.WithLookup(s),
		session.WithValidity(surface),
		session.WithLogger(s.logger),
	}
	return session.New(s.catalog, surface, append(base, options...)...)
}

func (s *Server) writeForm(w http.ResponseWriter, r *http.Request, resolver *session.Resolver, surface *render.Surface, messages []string) {
	view := render.Snapshot(resolver, surface,
		render.WithAction("/create_asset", http.MethodPost),
		render.WithCategories(s.types.Names()),
		render.WithMessages(messages...),
	)
	renderer, err := s.formRenderer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotAcceptable)
		return
	}
	out, err := renderer.Render(r.Context(), view)
	if err != nil {
		s.logger.Error("render form failed", "category", view.Category, "renderer", renderer.Name(), "error", err)
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// formRenderer honours an explicit ?format= before the Accept header.
func (s *Server) formRenderer(r *http.Request) (render.Renderer, error) {
	if format := strings.TrimSpace(r.URL.Query().Get("format")); format != "" {
		return s.renderers.Get(format)
	}
	return s.renderers.Negotiate(r.Header.Get("Accept"))
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid form body"})
		return
	}

	record, err := s.intake.Decode(r.PostForm)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid asset submission", Errors: reqErr.Fields})
			return
		}
		s.logger.Error("decode asset failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal server error"})
		return
	}

	s.logger.Info("asset received",
		"category", record.Category,
		"new_type", record.NewType,
		"fields", catalog.FieldNames(record.Fields),
	)
	writeJSON(w, http.StatusCreated, assetResponse{
		Success: true,
		Message: "Asset added successfully.",
		Record:  record.Values,
	})
}

func (s *Server) handleRouteDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.routeDoc)
}
