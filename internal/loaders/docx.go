package loaders

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure DocxLoader implements the interface.
var _ driven.Loader = (*DocxLoader)(nil)

// DocxLoader handles DOCX files. A DOCX file is a ZIP archive; the
// text lives in word/document.xml as paragraphs of runs.
type DocxLoader struct{}

// NewDocx creates a new DOCX loader.
func NewDocx() *DocxLoader {
	return &DocxLoader{}
}

// Extensions returns the file extensions this loader handles.
func (l *DocxLoader) Extensions() []string {
	return []string{"docx"}
}

// Format returns the format identifier for DOCX documents.
func (l *DocxLoader) Format() string {
	return "docx"
}

// Load extracts the paragraph text from the archive. The content
// hash covers the raw archive bytes, not the extracted text.
func (l *DocxLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	data, resolved, err := readSource(path)
	if err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid DOCX archive: %v", domain.ErrLoad, path, err)
	}

	text, err := extractDocumentText(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting text from %s: %v", domain.ErrLoad, path, err)
	}

	return &domain.Document{
		SourceID:    resolved,
		Path:        resolved,
		RawText:     text,
		Format:      l.Format(),
		ContentHash: hashBytes(data),
	}, nil
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}

		return parseDocumentXML(content)
	}
	return "", fmt.Errorf("word/document.xml not found in archive")
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", err
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, text := range r.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
