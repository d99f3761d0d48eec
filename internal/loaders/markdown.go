package loaders

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure MarkdownLoader implements the interface.
var _ driven.Loader = (*MarkdownLoader)(nil)

// MarkdownLoader handles Markdown files. Markdown syntax is stripped
// so that chunks and retrieval context hold readable prose rather
// than formatting markers.
type MarkdownLoader struct{}

// NewMarkdown creates a new Markdown loader.
func NewMarkdown() *MarkdownLoader {
	return &MarkdownLoader{}
}

// Extensions returns the file extensions this loader handles.
func (l *MarkdownLoader) Extensions() []string {
	return []string{"md", "markdown"}
}

// Format returns the format identifier for Markdown documents.
func (l *MarkdownLoader) Format() string {
	return "md"
}

// Load reads the file and strips Markdown formatting. The content
// hash covers the raw bytes, not the stripped text.
func (l *MarkdownLoader) Load(_ context.Context, path string) (*domain.Document, error) {
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
		RawText:     stripMarkdown(string(data)),
		Format:      l.Format(),
		ContentHash: hashBytes(data),
	}, nil
}

var (
	mdCodeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	mdInlineCode   = regexp.MustCompile("`[^`]+`")
	mdImages       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdLinks        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeadings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBlockquote   = regexp.MustCompile(`(?m)^>\s*`)
	mdHorizRule    = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	mdListMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	mdNumberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	mdMultiNewline = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown formatting for plain text content.
// This is a simplified implementation that handles common cases.
func stripMarkdown(content string) string {
	content = mdCodeBlock.ReplaceAllString(content, "")
	content = mdInlineCode.ReplaceAllString(content, "")
	content = mdImages.ReplaceAllString(content, "")

	// Convert links [text](url) to just text
	content = mdLinks.ReplaceAllString(content, "$1")

	content = mdHeadings.ReplaceAllString(content, "")
	content = mdBlockquote.ReplaceAllString(content, "")
	content = mdHorizRule.ReplaceAllString(content, "")
	content = mdListMarkers.ReplaceAllString(content, "")
	content = mdNumberedList.ReplaceAllString(content, "")

	// Remove bold/italic markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = mdMultiNewline.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
