package driving

import "github.com/custodia-labs/lectern-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetPipeline updates the chunking and retrieval settings.
	SetPipeline(pipeline domain.PipelineSettings) error

	// Validate checks if current settings allow ingestion and query.
	Validate() error

	// ValidateEmbeddingConfig checks the embedding configuration by
	// pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig checks the LLM configuration by pinging the
	// provider.
	ValidateLLMConfig() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
