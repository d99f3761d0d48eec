package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Lectern resources.
	uriScheme = "lectern://"
)

// entryInfo is the JSON shape of one manifest entry in resources.
type entryInfo struct {
	SourceID   string `json:"source_id"`
	Path       string `json:"path"`
	Format     string `json:"format"`
	Chunks     int    `json:"chunks"`
	Size       int64  `json:"size"`
	IngestedAt string `json:"ingested_at"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing the ingested library.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "library",
		Name:        "library",
		Description: "Every ingested source with its chunk count and ingestion time",
		MIMEType:    "application/json",
	}, s.handleLibraryResource)

	// Template for one library entry.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "library/{sourceId}",
		Name:        "library-entry",
		Description: "Ingestion record for a single source",
		MIMEType:    "application/json",
	}, s.handleEntryResource)
}

// handleLibraryResource returns every ingested source.
func (s *Server) handleLibraryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Manifest == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	entries, err := s.ports.Manifest.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing library: %w", err)
	}

	infos := make([]entryInfo, len(entries))
	for i := range entries {
		infos[i] = newEntryInfo(entries[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling library: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleEntryResource returns the ingestion record for one source.
func (s *Server) handleEntryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Manifest == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract sourceId from URI: lectern://library/{sourceId}
	sourceID := extractSourceID(req.Params.URI)
	if sourceID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entry, err := s.ports.Manifest.Get(ctx, sourceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading library entry: %w", err)
	}

	info := newEntryInfo(*entry)
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling library entry: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func newEntryInfo(entry domain.ManifestEntry) entryInfo {
	return entryInfo{
		SourceID:   entry.SourceID,
		Path:       entry.Path,
		Format:     entry.Format,
		Chunks:     entry.ChunkCount,
		Size:       entry.Size,
		IngestedAt: entry.IngestedAt.Format(time.RFC3339),
	}
}

// extractSourceID extracts the source ID from a URI like lectern://library/{sourceId}.
func extractSourceID(uri string) string {
	const prefix = uriScheme + "library/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
