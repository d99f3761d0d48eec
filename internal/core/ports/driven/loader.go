package driven

import (
	"context"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// Loader extracts raw text from a single file.
// Implementations are format-specific (plain text, Markdown, DOCX)
// and must fail with a typed error rather than return partial or
// garbled text: domain.ErrLoad for unreadable or malformed files,
// domain.ErrUnsupportedFormat for extensions they do not handle.
type Loader interface {
	// Load reads the file at path and returns the extracted document.
	// The returned document carries the resolved path, detected
	// format, and content hash alongside the raw text.
	Load(ctx context.Context, path string) (*domain.Document, error)

	// Extensions returns the file extensions this loader handles,
	// lowercase and without the leading dot (e.g. "md").
	Extensions() []string

	// Format returns the format identifier recorded on documents
	// this loader produces.
	Format() string
}

// LoaderRegistry selects the loader responsible for a file.
type LoaderRegistry interface {
	// LoaderFor returns the loader registered for the path's
	// extension, or domain.ErrUnsupportedFormat if none is.
	LoaderFor(path string) (Loader, error)

	// SupportedExtensions returns all registered extensions,
	// sorted, lowercase, without the leading dot.
	SupportedExtensions() []string
}

// SourceResolver expands an ingestion root into candidate file paths.
type SourceResolver interface {
	// Resolve returns the candidate paths under root, sorted. A file
	// root is returned as-is; a directory root is expanded honouring
	// the recursive flag and the extension filter (lowercase, no
	// dot; empty means every supported extension). Structural
	// problems, such as a missing root or an unreadable directory,
	// are errors; non-matching files are silently excluded.
	Resolve(root string, fileTypes []string, recursive bool) ([]string, error)
}
