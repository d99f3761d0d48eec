package domain

import "time"

// FileFailure records a single file that could not be ingested.
type FileFailure struct {
	// Path is the file that failed.
	Path string

	// Reason is the human-readable failure cause.
	Reason string
}

// IngestionReport summarises one ingestion run. It is produced per
// call and never persisted. Per-file failures are reported here
// rather than raised, so one bad file cannot abort a batch.
type IngestionReport struct {
	// RunID uniquely identifies this ingestion run.
	RunID string

	// Accepted counts files that were chunked, embedded, and indexed.
	Accepted int

	// SkippedDuplicate counts files whose content hash was already
	// present in the manifest (no-op unless force is set).
	SkippedDuplicate int

	// Failed lists files that could not be ingested, in the order
	// their failures were observed.
	Failed []FileFailure

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Total returns the number of candidate files the run processed.
func (r *IngestionReport) Total() int {
	return r.Accepted + r.SkippedDuplicate + len(r.Failed)
}

// HasFailures returns true if any file failed to ingest.
func (r *IngestionReport) HasFailures() bool {
	return len(r.Failed) > 0
}
