package factory

import (
	"fmt"

	"ai-studypal-be/internal/config"
	"ai-studypal-be/pkg/llm"
	"ai-studypal-be/pkg/llm/gemini"
	"ai-studypal-be/pkg/llm/huggingface"
	"ai-studypal-be/pkg/llm/ollama"
)

// NewLLMProvider builds the configured model backend.
func NewLLMProvider(cfg config.AIConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(cfg.GeminiAPIKey, cfg.Model), nil
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.HFAPIKey, cfg.HFBaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
