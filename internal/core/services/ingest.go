package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lectern-cli/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestService = (*IngestOrchestrator)(nil)

// IngestOrchestrator coordinates document ingestion: it resolves the
// root into candidate files, then loads, chunks, embeds, and indexes
// each candidate. Files are processed concurrently with per-file
// failure isolation; one bad file never aborts the batch.
type IngestOrchestrator struct {
	resolver   driven.SourceResolver
	registry   driven.LoaderRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	manifest   driven.ManifestStore
	chunkStore driven.ChunkStore

	retryDelay time.Duration

	// Per-source locks serialise index mutation for one source ID.
	mu      sync.Mutex
	sources map[string]*sync.Mutex
}

// NewIngestOrchestrator creates a new ingestion orchestrator.
func NewIngestOrchestrator(
	resolver driven.SourceResolver,
	registry driven.LoaderRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	manifest driven.ManifestStore,
	chunkStore driven.ChunkStore,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		resolver:   resolver,
		registry:   registry,
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		manifest:   manifest,
		chunkStore: chunkStore,
		sources:    make(map[string]*sync.Mutex),
	}
}

// SetRetryDelay overrides the base backoff delay for provider retries.
func (o *IngestOrchestrator) SetRetryDelay(d time.Duration) {
	o.retryDelay = d
}

// fileOutcome is the per-file result merged into the report.
type fileOutcome struct {
	path    string
	skipped bool
	err     error
}

// Ingest runs one ingestion batch over the candidates under root.
// Per-file failures are recorded in the report; only structural
// errors (missing root, unreadable directory, model mismatch) are
// returned as errors.
func (o *IngestOrchestrator) Ingest(
	ctx context.Context, root string, opts driving.IngestOptions,
) (*domain.IngestionReport, error) {
	start := time.Now()

	if o.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if o.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	logger.Section("Ingestion")

	if err := o.ensureIndexModel(ctx); err != nil {
		return nil, err
	}

	paths, err := o.resolver.Resolve(root, opts.FileTypes, opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("resolve candidates: %w", err)
	}

	report := &domain.IngestionReport{RunID: uuid.New().String()}
	if len(paths) == 0 {
		logger.Info("No candidate files under %s", root)
		report.Duration = time.Since(start)
		return report, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = domain.DefaultWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	logger.Info("Ingesting %d candidate files with %d workers (force=%t)", len(paths), workers, opts.Force)

	jobs := make(chan string)
	outcomes := make(chan fileOutcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case outcomes <- o.processFile(ctx, path, opts.Force):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single aggregation point: per-file outcomes merge into the
	// report here and nowhere else.
	for outcome := range outcomes {
		switch {
		case outcome.err != nil:
			logger.Warn("Failed %s: %v", outcome.path, outcome.err)
			report.Failed = append(report.Failed, domain.FileFailure{
				Path:   outcome.path,
				Reason: outcome.err.Error(),
			})
		case outcome.skipped:
			logger.Debug("Skipping %s: content unchanged", outcome.path)
			report.SkippedDuplicate++
		default:
			logger.Debug("Accepted %s", outcome.path)
			report.Accepted++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	logger.Info("Ingestion complete: %d accepted, %d skipped, %d failed in %s",
		report.Accepted, report.SkippedDuplicate, len(report.Failed),
		report.Duration.Round(time.Millisecond))
	return report, nil
}

// ListCandidates resolves root the same way Ingest would, without
// ingesting anything.
func (o *IngestOrchestrator) ListCandidates(
	_ context.Context, root string, opts driving.IngestOptions,
) ([]string, error) {
	return o.resolver.Resolve(root, opts.FileTypes, opts.Recursive)
}

// processFile handles one candidate end to end: load, dedup check,
// chunk, embed, then evict-and-upsert under the source lock.
func (o *IngestOrchestrator) processFile(ctx context.Context, path string, force bool) fileOutcome {
	logger.Debug("Processing %s", path)

	loader, err := o.registry.LoaderFor(path)
	if err != nil {
		return fileOutcome{path: path, err: err}
	}

	doc, err := loader.Load(ctx, path)
	if err != nil {
		return fileOutcome{path: path, err: err}
	}

	previous, err := o.manifest.Get(ctx, doc.SourceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fileOutcome{path: path, err: fmt.Errorf("read manifest: %w", err)}
	}

	// Dedup guarantee: re-ingesting unchanged content is a no-op
	// unless forced.
	if previous != nil && previous.ContentHash == doc.ContentHash && !force {
		return fileOutcome{path: path, skipped: true}
	}

	chunks := o.chunker.Chunk(doc)

	// Embedding happens before the source lock is taken: no lock is
	// held across a network call.
	records, err := o.embedChunks(ctx, doc, chunks)
	if err != nil {
		return fileOutcome{path: path, err: err}
	}

	// Index mutation for one source is serialised so a forced
	// re-ingestion cannot interleave its evict and insert steps with
	// another run over the same source.
	unlock := o.lockSource(doc.SourceID)
	defer unlock()

	if previous != nil {
		if err := o.evictSource(ctx, doc.SourceID); err != nil {
			return fileOutcome{path: path, err: err}
		}
	}

	for _, record := range records {
		if err := o.index.Upsert(ctx, record); err != nil {
			return fileOutcome{path: path, err: fmt.Errorf("upsert vector: %w", err)}
		}
	}
	if err := o.chunkStore.SaveChunks(ctx, doc.SourceID, chunks); err != nil {
		return fileOutcome{path: path, err: fmt.Errorf("save chunks: %w", err)}
	}
	if err := o.manifest.Put(ctx, o.manifestEntry(doc, len(chunks))); err != nil {
		return fileOutcome{path: path, err: fmt.Errorf("update manifest: %w", err)}
	}

	return fileOutcome{path: path}
}

// embedChunks generates embeddings for all chunks in one batch,
// retrying transient provider failures with backoff.
func (o *IngestOrchestrator) embedChunks(
	ctx context.Context, doc *domain.Document, chunks []domain.Chunk,
) ([]domain.EmbeddingRecord, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	err := withRetry(ctx, o.retryDelay, "embedding", func() error {
		var embedErr error
		vectors, embedErr = o.embedder.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d chunks",
			domain.ErrEmbedding, len(vectors), len(chunks))
	}

	records := make([]domain.EmbeddingRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.EmbeddingRecord{
			ChunkID: chunk.ID,
			Vector:  vectors[i],
			Metadata: domain.VectorMetadata{
				SourceID:   chunk.SourceID,
				Format:     doc.Format,
				ChunkIndex: chunk.Index,
			},
		}
	}
	return records, nil
}

// evictSource removes the previous version's chunks so stale entries
// cannot linger in retrieval after the source changed or was forced.
func (o *IngestOrchestrator) evictSource(ctx context.Context, sourceID string) error {
	if err := o.index.DeleteBySource(ctx, sourceID); err != nil {
		return fmt.Errorf("evict stale vectors: %w", err)
	}
	if err := o.chunkStore.DeleteBySource(ctx, sourceID); err != nil {
		return fmt.Errorf("evict stale chunks: %w", err)
	}
	return nil
}

// ensureIndexModel pins the embedding model to the index on first
// write and rejects ingestion against an index built with a
// different model.
func (o *IngestOrchestrator) ensureIndexModel(ctx context.Context) error {
	meta, err := o.index.Meta(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return o.index.SetMeta(ctx, domain.IndexMeta{
			EmbeddingModel: o.embedder.ModelName(),
			Dimensions:     o.embedder.Dimensions(),
			CreatedAt:      time.Now(),
		})
	}
	if err != nil {
		return fmt.Errorf("read index metadata: %w", err)
	}
	if meta.EmbeddingModel != o.embedder.ModelName() {
		return fmt.Errorf(
			"%w: index was built with embedding model %q but %q is configured; clear the index or restore the original model",
			domain.ErrConfig, meta.EmbeddingModel, o.embedder.ModelName(),
		)
	}
	return nil
}

// manifestEntry builds the manifest record for a freshly ingested
// document. File size and mtime are best-effort.
func (o *IngestOrchestrator) manifestEntry(doc *domain.Document, chunkCount int) domain.ManifestEntry {
	entry := domain.ManifestEntry{
		SourceID:    doc.SourceID,
		Path:        doc.Path,
		ContentHash: doc.ContentHash,
		Format:      doc.Format,
		ChunkCount:  chunkCount,
		IngestedAt:  time.Now(),
	}
	if info, err := os.Stat(doc.Path); err == nil {
		entry.Size = info.Size()
		entry.ModTime = info.ModTime()
	}
	return entry
}

// lockSource acquires the mutation lock for a source ID and returns
// its release function.
func (o *IngestOrchestrator) lockSource(sourceID string) func() {
	o.mu.Lock()
	lock, ok := o.sources[sourceID]
	if !ok {
		lock = &sync.Mutex{}
		o.sources[sourceID] = lock
	}
	o.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
