package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/DragonRuins/hubdoc/internal/config"
	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/extensions"
	"github.com/DragonRuins/hubdoc/internal/htmlconv"
	"github.com/DragonRuins/hubdoc/internal/mdconv"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// currentRegistry compiles the default extension set once per invocation.
func currentRegistry() (*extension.Registry, error) {
	all, _ := extensions.Default(config.CurrentConfig().MermaidRenderDebounce())
	return extension.NewRegistry(all...)
}

// readDocument parses a document from raw bytes, choosing the format from
// the file extension: .json, .md/.markdown, or .html.
func readDocument(schema *model.Schema, path string, content []byte) (*model.Node, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return model.FromJSON(schema, content)
	case ".md", ".markdown":
		return mdconv.Import(schema, string(content))
	case ".html", ".htm":
		return htmlconv.Parse(schema, string(content))
	}
	return nil, nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
}
