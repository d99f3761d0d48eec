package loaders

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps file extensions to loaders.
type Registry struct {
	byExtension map[string]driven.Loader
}

// NewRegistry creates a registry with the built-in loaders
// (plain text, Markdown, HTML, DOCX) registered.
func NewRegistry() *Registry {
	r := &Registry{byExtension: make(map[string]driven.Loader)}
	r.Register(NewPlaintext())
	r.Register(NewMarkdown())
	r.Register(NewHTML())
	r.Register(NewDocx())
	return r
}

// Register adds a loader for each extension it declares.
// A later registration for the same extension wins.
func (r *Registry) Register(loader driven.Loader) {
	for _, ext := range loader.Extensions() {
		r.byExtension[strings.ToLower(ext)] = loader
	}
}

// LoaderFor returns the loader registered for the path's extension.
func (r *Registry) LoaderFor(path string) (driven.Loader, error) {
	ext := normaliseExtension(path)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", domain.ErrUnsupportedFormat, path)
	}

	loader, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: .%s", domain.ErrUnsupportedFormat, ext)
	}
	return loader, nil
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// normaliseExtension lowercases a path's extension and drops the dot.
func normaliseExtension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
