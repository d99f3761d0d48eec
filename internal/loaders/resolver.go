package loaders

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure Resolver implements the port.
var _ driven.SourceResolver = (*Resolver)(nil)

// Resolver expands an ingestion root into the candidate file list.
// A file root is returned as-is; a directory root is walked, honouring
// the recursive flag and the extension filter. Hidden files and
// directories (dot-prefixed) are always skipped. Non-matching files
// are silently excluded, not failures.
type Resolver struct {
	registry driven.LoaderRegistry
}

// NewResolver creates a resolver backed by the given registry.
func NewResolver(registry driven.LoaderRegistry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the candidate paths under root, sorted. fileTypes
// filters directory expansion to the given extensions (lowercase, no
// dot); empty means every supported extension. Structural problems -
// a missing root, an unreadable directory - are returned as errors.
func (r *Resolver) Resolve(root string, fileTypes []string, recursive bool) ([]string, error) {
	resolved, err := resolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading root %s: %w", root, err)
	}

	// A single-file root bypasses the extension filter; unsupported
	// formats surface as per-file failures during loading instead.
	if !info.IsDir() {
		return []string{resolved}, nil
	}

	wanted := r.wantedExtensions(fileTypes)

	var candidates []string
	walkErr := filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path == resolved {
				return nil
			}
			if !recursive || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if wanted[normaliseExtension(name)] {
			candidates = append(candidates, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}

	sort.Strings(candidates)
	return candidates, nil
}

// wantedExtensions turns the filter into a lookup set, constrained to
// extensions a loader actually handles.
func (r *Resolver) wantedExtensions(fileTypes []string) map[string]bool {
	supported := make(map[string]bool)
	for _, ext := range r.registry.SupportedExtensions() {
		supported[ext] = true
	}
	if len(fileTypes) == 0 {
		return supported
	}

	wanted := make(map[string]bool, len(fileTypes))
	for _, ext := range fileTypes {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if supported[ext] {
			wanted[ext] = true
		}
	}
	return wanted
}
