// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Loader: Extracts raw text from a file path
//   - LoaderRegistry: Selects the loader for a file
//   - VectorIndex: Vector persistence and similarity search
//   - ManifestStore: Ingestion manifest persistence (dedup)
//   - ChunkStore: Chunk text persistence (retrieval hydration)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - affected operations fail with a typed error:
//
//   - EmbeddingService: Generates vector embeddings. Without it,
//     ingestion and retrieval are unavailable.
//   - LLMService: Language model completion. Without it, answer
//     generation and chat are unavailable.
//   - PromptStore: Customisable prompt templates. Without it,
//     embedded defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
