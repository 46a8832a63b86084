package html

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	gotemplate "github.com/goliatone/go-template"
	"github.com/microcosm-cc/bluemonday"
)

const (
	sanitizeFilter    = "sanitize"
	templateExtension = ".tmpl"
)

var textPolicy = bluemonday.StrictPolicy()

// Sanitize strips every tag from s and escapes what is left, so the result
// is safe in element bodies and quoted attributes alike.
func Sanitize(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(Sanitize(in.String())), nil
}

// engine renders named templates from a bundle through go-template. Parsed
// templates are cached by the underlying pongo2 set.
type engine struct {
	templates *gotemplate.Engine
}

func newEngine(files fs.FS) (*engine, error) {
	if files == nil {
		return nil, errors.New("html: template filesystem is required")
	}
	templates, err := gotemplate.NewRenderer(
		gotemplate.WithFS(files),
		gotemplate.WithExtension(templateExtension),
		gotemplate.WithTemplateFunc(map[string]any{
			sanitizeFilter: pongo2.FilterFunction(filterSanitize),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("html: configure templates: %w", err)
	}
	if !pongo2.FilterExists(sanitizeFilter) {
		return nil, fmt.Errorf("html: filter %q is not registered", sanitizeFilter)
	}
	return &engine{templates: templates}, nil
}

// render executes name with data. Data crosses a JSON round trip, so it must
// only hold maps, slices and scalars.
func (e *engine) render(name string, data map[string]any) ([]byte, error) {
	out, err := e.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("html: render %q: %w", name, err)
	}
	return []byte(out), nil
}
