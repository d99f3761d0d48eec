// Package chunker splits document text into fixed-size overlapping
// chunks with reproducible boundaries.
package chunker

import (
	"fmt"
	"hash/fnv"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure Chunker implements the port.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits documents into overlapping chunks. Splitting is
// length-based, not sentence-aware: chunk i starts at i*(size-overlap)
// and spans up to size bytes, clipped to the text length. This keeps
// boundaries deterministic and language-agnostic. Offsets are byte
// offsets into the UTF-8 text.
type Chunker struct {
	size    int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker with the given options. Defaults to
// domain.DefaultChunkSize and domain.DefaultChunkOverlap. Returns
// domain.ErrConfig when the overlap is not smaller than the size or
// either value is non-positive.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    domain.DefaultChunkSize,
		overlap: domain.DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 || c.overlap <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d and overlap %d must be positive",
			domain.ErrConfig, c.size, c.overlap)
	}
	if c.overlap >= c.size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrConfig, c.overlap, c.size)
	}

	return c, nil
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int {
	return c.size
}

// Overlap returns the configured chunk overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits the document's raw text. Empty text yields no chunks;
// text shorter than the chunk size yields exactly one chunk spanning
// the whole text. Consecutive chunks share exactly the configured
// overlap, except the final chunk, which is clipped to the text
// length and may be shorter.
func (c *Chunker) Chunk(doc *domain.Document) []domain.Chunk {
	text := doc.RawText
	if text == "" {
		return nil
	}

	textLen := len(text)
	stride := c.size - c.overlap

	chunks := make([]domain.Chunk, 0, textLen/stride+1)

	for start := 0; start < textLen; start += stride {
		end := start + c.size
		if end > textLen {
			end = textLen
		}

		chunks = append(chunks, domain.Chunk{
			ID:          c.chunkID(doc.SourceID, start),
			SourceID:    doc.SourceID,
			Text:        text[start:end],
			StartOffset: start,
			EndOffset:   end,
			Index:       len(chunks),
			ContentHash: doc.ContentHash,
		})
	}

	return chunks
}

// chunkID derives a stable chunk identity from the source identity,
// the chunk's start offset, and the chunking geometry - never from
// the chunk content. Re-chunking unchanged text with unchanged
// settings reproduces identical IDs, which is what makes dedup work;
// changing the chunk size invalidates every ID for the source, which
// is what forces a full reindex after a configuration change.
func (c *Chunker) chunkID(sourceID string, start int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%d\x00%d\x00%d", sourceID, start, c.size, c.overlap)
	return fmt.Sprintf("%016x", h.Sum64())
}
