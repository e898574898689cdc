package llm

import (
	"fmt"
	"os"
)

// NewProvider creates an LLM provider. Supported types: "openai", "ollama".
// An empty type means "openai".
func NewProvider(providerType string, apiKey string, model string) (Provider, error) {
	switch providerType {
	case "", "openai":
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("missing OpenAI API key")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		// model names the OpenAI answering model; the local model is its
		// own setting.
		ollamaModel := os.Getenv("OLLAMA_MODEL")
		if ollamaModel == "" {
			ollamaModel = "llama3"
		}
		return NewOllamaProvider(host, ollamaModel), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
