package mcp

import (
	"context"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result       *domain.AnswerResult
	err          error
	lastQuestion string
	lastOpts     driving.QueryOptions
}

func (m *mockQueryService) Query(
	_ context.Context,
	question string,
	opts driving.QueryOptions,
) (*domain.AnswerResult, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	return m.result, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report   *domain.IngestionReport
	err      error
	lastRoot string
	lastOpts driving.IngestOptions
}

func (m *mockIngestService) Ingest(
	_ context.Context,
	root string,
	opts driving.IngestOptions,
) (*domain.IngestionReport, error) {
	m.lastRoot = root
	m.lastOpts = opts
	return m.report, m.err
}

func (m *mockIngestService) ListCandidates(
	_ context.Context,
	_ string,
	_ driving.IngestOptions,
) ([]string, error) {
	return nil, m.err
}

// mockManifestStore is a mock implementation of driven.ManifestStore.
type mockManifestStore struct {
	entries []domain.ManifestEntry
	entry   *domain.ManifestEntry
	err     error
}

func (m *mockManifestStore) Get(_ context.Context, _ string) (*domain.ManifestEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.entry == nil {
		return nil, domain.ErrNotFound
	}
	return m.entry, nil
}

func (m *mockManifestStore) Put(_ context.Context, _ domain.ManifestEntry) error {
	return m.err
}

func (m *mockManifestStore) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockManifestStore) List(_ context.Context) ([]domain.ManifestEntry, error) {
	return m.entries, m.err
}

func validPorts() *Ports {
	return &Ports{
		Query:  &mockQueryService{},
		Ingest: &mockIngestService{},
	}
}
