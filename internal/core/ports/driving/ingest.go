package driving

import (
	"context"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// IngestService ingests files into the vector index.
type IngestService interface {
	// Ingest resolves root (a file or directory), then loads, chunks,
	// embeds, and indexes every candidate file. Per-file failures are
	// recorded in the report; only structural errors (missing root,
	// unreadable directory) return an error.
	Ingest(ctx context.Context, root string, opts IngestOptions) (*domain.IngestionReport, error)

	// ListCandidates resolves root the same way Ingest would and
	// returns the candidate paths without ingesting them.
	ListCandidates(ctx context.Context, root string, opts IngestOptions) ([]string, error)
}

// IngestOptions configures one ingestion run. The zero value is not
// useful; construct with DefaultIngestOptions and override.
type IngestOptions struct {
	// FileTypes filters directory expansion to these extensions
	// (lowercase, no dot). Empty means all supported types.
	FileTypes []string

	// Recursive controls whether directory expansion descends into
	// subdirectories.
	Recursive bool

	// Force re-ingests sources even when their content hash is
	// unchanged, evicting previously stored chunks first.
	Force bool

	// Workers bounds file-level parallelism. Zero means the
	// configured default.
	Workers int
}

// DefaultIngestOptions returns the options used when flags are absent.
func DefaultIngestOptions() IngestOptions {
	return IngestOptions{
		Recursive: true,
		Workers:   domain.DefaultWorkers,
	}
}
