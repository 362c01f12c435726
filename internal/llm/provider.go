package llm

import (
	"go.uber.org/zap"

	"recipe-llm/internal/config"
)

// NewFromConfig elige el proveedor según LLM_PROVIDER. El Embedder es nil
// cuando el proveedor no lo soporta o no hay modelo de embeddings configurado.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (LLMClient, Embedder) {
	switch cfg.LLMProvider {
	case config.LLMProviderGemini:
		return NewGeminiClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger), nil
	default:
		client := NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, logger)
		if cfg.LLMEmbeddingModel == "" {
			return client, nil
		}
		return client, client
	}
}
