package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

func newSettingsService() (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	return NewSettingsService(store, nil), store
}

// fakeAIValidator implements driven.AIConfigValidator with canned errors.
type fakeAIValidator struct {
	embeddingErr error
	llmErr       error
}

func (f *fakeAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return f.embeddingErr
}

func (f *fakeAIValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return f.llmErr
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	service, _ := newSettingsService()

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChunkSize, settings.Pipeline.ChunkSize)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.Pipeline.ChunkOverlap)
	assert.Equal(t, domain.DefaultTopK, settings.Pipeline.TopK)
	assert.Equal(t, domain.DefaultContextChars, settings.Pipeline.ContextChars)
	assert.Equal(t, domain.DefaultWorkers, settings.Pipeline.Workers)
	assert.InDelta(t, domain.DefaultTemperature, settings.Pipeline.Temperature, 1e-9)
	assert.False(t, settings.Embedding.IsConfigured())
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettingsService_SaveAndGet_RoundTrip(t *testing.T) {
	service, _ := newSettingsService()

	saved := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProviderAnthropic,
			Model:    "claude-3-5-sonnet-latest",
			APIKey:   "sk-ant-test",
		},
		Pipeline: domain.PipelineSettings{
			ChunkSize:    500,
			ChunkOverlap: 50,
			TopK:         3,
			ContextChars: 2000,
			Workers:      2,
			Temperature:  0.7,
		},
	}

	require.NoError(t, service.Save(saved))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestSettingsService_Save_OmitsEmptyAPIKeys(t *testing.T) {
	service, store := newSettingsService()

	settings := service.GetDefaults()
	settings.Embedding.Provider = domain.AIProviderOllama
	require.NoError(t, service.Save(&settings))

	_, exists := store.Get(keyEmbedAPIKey)
	assert.False(t, exists)
	_, exists = store.Get(keyLLMAPIKey)
	assert.False(t, exists)
}

func TestSettingsService_Get_ZeroTemperature(t *testing.T) {
	service, store := newSettingsService()
	require.NoError(t, store.Set(keyTemperature, 0.0))

	settings, err := service.Get()

	require.NoError(t, err)
	// A stored zero is a real temperature, not an unset value.
	assert.InDelta(t, 0.0, settings.Pipeline.Temperature, 1e-9)
}

func TestSettingsService_SetEmbeddingProvider_Ollama(t *testing.T) {
	service, _ := newSettingsService()

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, defaultOllamaURL, settings.Embedding.BaseURL)
}

func TestSettingsService_SetEmbeddingProvider_OpenAI(t *testing.T) {
	service, _ := newSettingsService()

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-test"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
}

func TestSettingsService_SetEmbeddingProvider_OpenAIRequiresKey(t *testing.T) {
	service, _ := newSettingsService()

	err := service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "API key required")
}

func TestSettingsService_SetEmbeddingProvider_AnthropicRejected(t *testing.T) {
	service, _ := newSettingsService()

	err := service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "sk-ant")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "does not support embeddings")
}

func TestSettingsService_SetEmbeddingProvider_Invalid(t *testing.T) {
	service, _ := newSettingsService()

	err := service.SetEmbeddingProvider("mystery", "", "")

	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestSettingsService_SetLLMProvider_Anthropic(t *testing.T) {
	service, _ := newSettingsService()

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant-test"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)
}

func TestSettingsService_SetLLMProvider_CustomModel(t *testing.T) {
	service, _ := newSettingsService()

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "mistral", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "mistral", settings.LLM.Model)
	assert.Equal(t, defaultOllamaURL, settings.LLM.BaseURL)
}

func TestSettingsService_SetPipeline(t *testing.T) {
	service, _ := newSettingsService()

	pipeline := domain.PipelineSettings{
		ChunkSize:    800,
		ChunkOverlap: 100,
		TopK:         4,
		ContextChars: 4000,
		Workers:      8,
		Temperature:  0.2,
	}
	require.NoError(t, service.SetPipeline(pipeline))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, pipeline, settings.Pipeline)
}

func TestSettingsService_SetPipeline_Invalid(t *testing.T) {
	service, _ := newSettingsService()

	// Overlap must stay below chunk size.
	err := service.SetPipeline(domain.PipelineSettings{
		ChunkSize:    100,
		ChunkOverlap: 100,
		TopK:         5,
		ContextChars: 8000,
		Workers:      4,
		Temperature:  0.3,
	})

	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestSettingsService_Validate(t *testing.T) {
	service, _ := newSettingsService()

	err := service.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider")

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	err = service.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM provider")

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))
	assert.NoError(t, service.Validate())
}

func TestSettingsService_ValidateEmbeddingConfig_NilValidator(t *testing.T) {
	service, _ := newSettingsService()

	assert.NoError(t, service.ValidateEmbeddingConfig())
}

func TestSettingsService_ValidateLLMConfig_NilValidator(t *testing.T) {
	service, _ := newSettingsService()

	assert.NoError(t, service.ValidateLLMConfig())
}

func TestSettingsService_ValidateEmbeddingConfig_Pings(t *testing.T) {
	store := memory.NewConfigStore()
	validator := &fakeAIValidator{embeddingErr: domain.ErrEmbeddingUnavailable}
	service := NewSettingsService(store, validator)

	err := service.ValidateEmbeddingConfig()

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.NoError(t, service.ValidateLLMConfig())
}

func TestSettingsService_ValidateLLMConfig_Pings(t *testing.T) {
	store := memory.NewConfigStore()
	validator := &fakeAIValidator{llmErr: domain.ErrLLMUnavailable}
	service := NewSettingsService(store, validator)

	err := service.ValidateLLMConfig()

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.NoError(t, service.ValidateEmbeddingConfig())
}
