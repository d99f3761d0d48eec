package loaders

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure HTMLLoader implements the interface.
var _ driven.Loader = (*HTMLLoader)(nil)

// HTMLLoader handles HTML files. Markup is stripped down to readable
// text: scripts, styles and head content are dropped, block elements
// become line breaks, and entities are decoded.
type HTMLLoader struct{}

// NewHTML creates a new HTML loader.
func NewHTML() *HTMLLoader {
	return &HTMLLoader{}
}

// Extensions returns the file extensions this loader handles.
func (l *HTMLLoader) Extensions() []string {
	return []string{"html", "htm"}
}

// Format returns the format identifier for HTML documents.
func (l *HTMLLoader) Format() string {
	return "html"
}

// Load reads the file and strips the markup. The content hash covers
// the raw bytes, not the extracted text.
func (l *HTMLLoader) Load(_ context.Context, path string) (*domain.Document, error) {
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
		RawText:     stripHTML(string(data)),
		Format:      l.Format(),
		ContentHash: hashBytes(data),
	}, nil
}

var (
	htmlScriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlStyleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlNoscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	htmlHeadTag      = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlSvgTag       = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments     = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlOpenBlocks   = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	htmlCloseBlocks  = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	htmlBrTags       = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlHrTags       = regexp.MustCompile(`(?i)<hr\s*/?>`)
	htmlAllTags      = regexp.MustCompile(`<[^>]+>`)
	htmlMultiSpaces  = regexp.MustCompile(`[ \t]+`)
	htmlMultiNewline = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes markup and extracts readable text content.
func stripHTML(content string) string {
	// Drop elements whose content is never prose.
	content = htmlScriptTag.ReplaceAllString(content, "")
	content = htmlStyleTag.ReplaceAllString(content, "")
	content = htmlNoscriptTag.ReplaceAllString(content, "")
	content = htmlHeadTag.ReplaceAllString(content, "")
	content = htmlSvgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become newlines so paragraph structure
	// survives tag stripping.
	content = htmlOpenBlocks.ReplaceAllString(content, "\n")
	content = htmlCloseBlocks.ReplaceAllString(content, "\n")
	content = htmlBrTags.ReplaceAllString(content, "\n")
	content = htmlHrTags.ReplaceAllString(content, "\n")

	content = htmlAllTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	content = htmlMultiSpaces.ReplaceAllString(content, " ")
	content = htmlMultiNewline.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
