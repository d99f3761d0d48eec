package loaders

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure PlaintextLoader implements the interface.
var _ driven.Loader = (*PlaintextLoader)(nil)

// PlaintextLoader handles plain text files.
type PlaintextLoader struct{}

// NewPlaintext creates a new plain text loader.
func NewPlaintext() *PlaintextLoader {
	return &PlaintextLoader{}
}

// Extensions returns the file extensions this loader handles.
func (l *PlaintextLoader) Extensions() []string {
	return []string{"txt", "text", "log"}
}

// Format returns the format identifier for plain text documents.
func (l *PlaintextLoader) Format() string {
	return "txt"
}

// Load reads the file as UTF-8 text.
func (l *PlaintextLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	data, resolved, err := readSource(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrLoad, path)
	}

	return &domain.Document{
		SourceID:    resolved,
		Path:        resolved,
		RawText:     string(data),
		Format:      l.Format(),
		ContentHash: hashBytes(data),
	}, nil
}

// readSource resolves the path and reads the raw file bytes.
// Read failures are wrapped with domain.ErrLoad so the pipeline can
// isolate them per file.
func readSource(path string) (data []byte, resolved string, err error) {
	resolved, err = resolvePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: resolving %s: %v", domain.ErrLoad, path, err)
	}
	data, err = os.ReadFile(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", domain.ErrLoad, path, err)
	}
	return data, resolved, nil
}

// resolvePath normalises a path to its absolute, cleaned form.
// The resolved path doubles as the source identity, so it must be
// stable across runs and working directories.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// hashBytes returns the SHA-256 hex digest of the raw file bytes.
func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
