// Package main assembles the lectern binary: driven adapters are
// constructed first, core services are wired on top of them, and the
// CLI adapter takes over from there.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lectern-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/lectern-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lectern-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lectern-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/lectern-cli/internal/chunker"
	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lectern-cli/internal/core/services"
	"github.com/custodia-labs/lectern-cli/internal/loaders"
	"github.com/custodia-labs/lectern-cli/internal/watcher"
)

// Populated at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; variables already in the environment win.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config store: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("initialising prompt store: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	applyEnvOverrides(settings)

	aiServices := ai.InitAIServices(*settings)
	defer aiServices.Close()
	for _, warning := range aiServices.Warnings {
		// Flags are not parsed yet, so the verbose logger cannot be
		// consulted here.
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	chunk, err := chunker.New(
		chunker.WithChunkSize(settings.Pipeline.ChunkSize),
		chunker.WithOverlap(settings.Pipeline.ChunkOverlap),
	)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	registry := loaders.NewRegistry()
	resolver := loaders.NewResolver(registry)

	ingestService := services.NewIngestOrchestrator(
		resolver,
		registry,
		chunk,
		aiServices.EmbeddingService,
		store.VectorIndex(),
		store.ManifestStore(),
		store.ChunkStore(),
	)

	retriever := services.NewRetriever(
		aiServices.EmbeddingService,
		store.VectorIndex(),
		store.ChunkStore(),
	)

	pipeline := settings.Pipeline

	answerGenerator := services.NewGenerator(aiServices.LLMService, pipeline.ContextChars, pipeline.Temperature)
	answerGenerator.SetPromptStore(promptStore)

	chatGenerator := services.NewGenerator(aiServices.LLMService, pipeline.ContextChars, pipeline.Temperature)
	chatGenerator.SetPromptStore(promptStore)
	chatGenerator.UsePrompt(driven.PromptChatSystem)

	queryService := services.NewQueryService(retriever, answerGenerator, pipeline.TopK)
	chatService := services.NewChatService(services.NewQueryService(retriever, chatGenerator, pipeline.TopK))

	watchService := watcher.New(ingestService, registry)
	watchService.OnReport(func(root string, report *domain.IngestionReport, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Re-ingest failed: %v\n", err)
			return
		}
		if report.Total() == 0 {
			return
		}
		fmt.Printf("Re-ingested %d file(s): %d accepted, %d skipped, %d failed\n",
			report.Total(), report.Accepted, report.SkippedDuplicate, len(report.Failed))
	})

	cli.SetVersion(version, commit, date)
	cli.SetServices(&cli.Services{
		Ingest:   ingestService,
		Query:    queryService,
		Chat:     chatService,
		Settings: settingsService,
		Watch:    watchService,
		Manifest: store.ManifestStore(),
	})

	return cli.Execute()
}

// applyEnvOverrides fills provider credentials from the environment.
// API keys saved through the settings wizard win over the environment;
// OLLAMA_BASE_URL always replaces the stored endpoint because the
// stored value defaults to localhost rather than to empty.
func applyEnvOverrides(settings *domain.AppSettings) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = key
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = key
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		if settings.LLM.Provider == domain.AIProviderAnthropic && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = key
		}
	}
	if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama {
			settings.Embedding.BaseURL = base
		}
		if settings.LLM.Provider == domain.AIProviderOllama {
			settings.LLM.BaseURL = base
		}
	}
}
