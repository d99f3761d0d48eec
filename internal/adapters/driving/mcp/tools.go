package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve as grounding context (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput cites one chunk used as grounding context.
type SourceOutput struct {
	SourceID   string  `json:"source_id"`
	Excerpt    string  `json:"excerpt"`
	Similarity float64 `json:"similarity"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path      string   `json:"path" jsonschema:"file or directory to ingest"`
	FileTypes []string `json:"file_types,omitempty" jsonschema:"extensions to include when path is a directory (e.g. txt, md)"`
	Recursive *bool    `json:"recursive,omitempty" jsonschema:"descend into subdirectories (default true)"`
	Force     bool     `json:"force,omitempty" jsonschema:"re-ingest files whose content is unchanged"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	RunID    string   `json:"run_id"`
	Accepted int      `json:"accepted"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
	Duration string   `json:"duration"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents, citing the sources used",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Ingest a file or directory into the document index",
	}, s.handleIngest)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Query.Query(ctx, input.Question, driving.QueryOptions{TopK: input.TopK})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  result.Answer,
		Sources: make([]SourceOutput, len(result.Sources)),
	}
	for i, src := range result.Sources {
		output.Sources[i] = SourceOutput{
			SourceID:   src.SourceID,
			Excerpt:    src.Excerpt,
			Similarity: src.Similarity,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	opts := driving.DefaultIngestOptions()
	opts.FileTypes = input.FileTypes
	opts.Force = input.Force
	if input.Recursive != nil {
		opts.Recursive = *input.Recursive
	}

	report, err := s.ports.Ingest.Ingest(ctx, input.Path, opts)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	output := IngestOutput{
		RunID:    report.RunID,
		Accepted: report.Accepted,
		Skipped:  report.SkippedDuplicate,
		Duration: report.Duration.Round(time.Millisecond).String(),
	}
	for _, failure := range report.Failed {
		output.Failed = append(output.Failed, fmt.Sprintf("%s: %s", failure.Path, failure.Reason))
	}

	return nil, output, nil
}
