package render

import (
	"fmt"
	"mime"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry stores renderers by name and picks one per request. The first
// renderer registered is the default. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds a renderer under its trimmed Name(). Duplicate names return an
// error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := strings.TrimSpace(renderer.Name())
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by name. An empty name resolves to the default.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		if len(r.order) == 0 {
			return nil, fmt.Errorf("render: no renderers registered")
		}
		name = r.order[0]
	}
	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// Negotiate picks the renderer for an Accept header. Media ranges are tried
// by descending quality, header order breaking ties; ranges with q=0 are
// never chosen. A type/* range takes the first renderer of that type and */*
// the default. A header with no match resolves to the default renderer.
func (r *Registry) Negotiate(accept string) (Renderer, error) {
	r.mu.RLock()
	for _, want := range mediaRanges(accept) {
		if want == "*/*" {
			break
		}
		prefix, wildcard := strings.CutSuffix(want, "/*")
		for _, name := range r.order {
			renderer := r.renderers[name]
			have, _, err := mime.ParseMediaType(renderer.ContentType())
			if err != nil {
				continue
			}
			if have == want || (wildcard && strings.HasPrefix(have, prefix+"/")) {
				r.mu.RUnlock()
				return renderer, nil
			}
		}
	}
	r.mu.RUnlock()
	return r.Get("")
}

type mediaRange struct {
	media string
	q     float64
}

// mediaRanges parses an Accept header into acceptable media types ordered by
// quality. Unparsable ranges and invalid or zero q values are dropped.
func mediaRanges(accept string) []string {
	var ranges []mediaRange
	for _, part := range strings.Split(accept, ",") {
		media, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if q, err = strconv.ParseFloat(raw, 64); err != nil || q < 0 || q > 1 {
				continue
			}
		}
		if q == 0 {
			continue
		}
		ranges = append(ranges, mediaRange{media: media, q: q})
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].q > ranges[j].q
	})
	out := make([]string, len(ranges))
	for i, rng := range ranges {
		out[i] = rng.media
	}
	return out
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[strings.TrimSpace(name)]
	return ok
}
