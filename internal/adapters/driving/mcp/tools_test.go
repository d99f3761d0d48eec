package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grounded answer with sources", func(t *testing.T) {
		mockQuery := &mockQueryService{
			result: &domain.AnswerResult{
				Answer: "Lectern is a pipeline.",
				Sources: []domain.SourceRef{
					{SourceID: "notes.md", Excerpt: "a pipeline", Similarity: 0.92},
				},
			},
		}

		ports := validPorts()
		ports.Query = mockQuery
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := AskInput{Question: "what is lectern?", TopK: 3}
		_, output, err := server.handleAsk(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "Lectern is a pipeline.", output.Answer)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "notes.md", output.Sources[0].SourceID)
		assert.Equal(t, "a pipeline", output.Sources[0].Excerpt)
		assert.Equal(t, 0.92, output.Sources[0].Similarity)

		// The top_k override travels through unchanged.
		assert.Equal(t, "what is lectern?", mockQuery.lastQuestion)
		assert.Equal(t, 3, mockQuery.lastOpts.TopK)
	})

	t.Run("zero top_k uses the configured default", func(t *testing.T) {
		mockQuery := &mockQueryService{
			result: &domain.AnswerResult{Answer: "ok", Sources: []domain.SourceRef{}},
		}

		ports := validPorts()
		ports.Query = mockQuery
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.NoError(t, err)
		assert.Equal(t, 0, mockQuery.lastOpts.TopK)
		assert.Empty(t, output.Sources)
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		ports := validPorts()
		ports.Query = &mockQueryService{err: errors.New("query failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "query failed")
	})
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the ingestion report", func(t *testing.T) {
		mockIngest := &mockIngestService{
			report: &domain.IngestionReport{
				RunID:            "run-1",
				Accepted:         3,
				SkippedDuplicate: 1,
				Failed: []domain.FileFailure{
					{Path: "/docs/bad.docx", Reason: "corrupt archive"},
				},
				Duration: 1250 * time.Millisecond,
			},
		}

		ports := validPorts()
		ports.Ingest = mockIngest
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := IngestInput{Path: "/docs", FileTypes: []string{"md"}, Force: true}
		_, output, err := server.handleIngest(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "run-1", output.RunID)
		assert.Equal(t, 3, output.Accepted)
		assert.Equal(t, 1, output.Skipped)
		require.Len(t, output.Failed, 1)
		assert.Equal(t, "/docs/bad.docx: corrupt archive", output.Failed[0])
		assert.Equal(t, "1.25s", output.Duration)

		assert.Equal(t, "/docs", mockIngest.lastRoot)
		assert.Equal(t, []string{"md"}, mockIngest.lastOpts.FileTypes)
		assert.True(t, mockIngest.lastOpts.Force)
		assert.True(t, mockIngest.lastOpts.Recursive)
	})

	t.Run("recursive false is honoured", func(t *testing.T) {
		mockIngest := &mockIngestService{report: &domain.IngestionReport{}}

		ports := validPorts()
		ports.Ingest = mockIngest
		server, err := NewServer(ports)
		require.NoError(t, err)

		recursive := false
		_, _, err = server.handleIngest(ctx, nil, IngestInput{Path: "/docs", Recursive: &recursive})

		require.NoError(t, err)
		assert.False(t, mockIngest.lastOpts.Recursive)
	})

	t.Run("returns error on ingest failure", func(t *testing.T) {
		ports := validPorts()
		ports.Ingest = &mockIngestService{err: errors.New("resolve candidates: no such file")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{Path: "/missing"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no such file")
	})
}
