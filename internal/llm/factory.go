package llm

import (
	"fmt"

	"creative-studio/internal/generation"
)

const (
	BackendOpenAI    = "openai"
	BackendLangChain = "langchain"
)

// Factory builds a completer bound to one session's credential.
type Factory func(apiKey string) (generation.Completer, error)

func NewFactory(backend, baseURL string) (Factory, error) {
	switch backend {
	case "", BackendOpenAI:
		return func(apiKey string) (generation.Completer, error) {
			return NewOpenAI(apiKey, baseURL), nil
		}, nil
	case BackendLangChain:
		return func(apiKey string) (generation.Completer, error) {
			return NewLangChain(apiKey, baseURL)
		}, nil
	default:
		return nil, fmt.Errorf("llm backend %s not supported", backend)
	}
}
