package dynform

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/renderers/html"
)

// DefaultCatalogName is the embedded catalog document inside DefaultCatalogFS.
const DefaultCatalogName = "master_fields.yaml"

//go:embed assets/master_fields.yaml
var embeddedAssets embed.FS

// DefaultCatalogFS exposes the embedded master field catalog.
func DefaultCatalogFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// DefaultCatalogSource points at the embedded catalog. Load it with a loader
// configured through catalog.WithFileSystem(DefaultCatalogFS()).
func DefaultCatalogSource() catalog.Source {
	return catalog.SourceFromFS(DefaultCatalogName)
}

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
