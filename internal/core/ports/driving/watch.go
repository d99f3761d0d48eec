package driving

import "context"

// WatchService re-ingests files as they change on disk.
type WatchService interface {
	// Watch ingests root once, then blocks re-ingesting changed
	// files until the context is cancelled. Events are debounced so
	// editors that write in bursts trigger a single re-ingestion.
	Watch(ctx context.Context, root string, opts IngestOptions) error
}
