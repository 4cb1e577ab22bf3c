package llm

import (
	"context"
	"fmt"
	"log/slog"

	"creative-studio/internal/generation"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type LangChain struct {
	llm *openai.LLM
}

func NewLangChain(apiKey, baseURL string) (*LangChain, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(generation.Model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create OpenAI client: %w", err)
	}

	return &LangChain{llm: client}, nil
}

func (l *LangChain) Complete(ctx context.Context, req generation.CompletionRequest) (generation.Completion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}

	resp, err := l.llm.GenerateContent(ctx, messages,
		llms.WithModel(req.Model),
		llms.WithMaxTokens(int(req.MaxTokens)),
		llms.WithTemperature(req.Temperature),
	)
	if err != nil {
		slog.Error("error calling OpenAI API", "error", err)
		return generation.Completion{}, err
	}

	if len(resp.Choices) == 0 {
		return generation.Completion{}, generation.ErrNoChoices
	}

	choice := resp.Choices[0]
	return generation.Completion{
		Text: choice.Content,
		Usage: generation.Usage{
			PromptTokens:     tokenCount(choice.GenerationInfo, "PromptTokens"),
			CompletionTokens: tokenCount(choice.GenerationInfo, "CompletionTokens"),
		},
	}, nil
}

func tokenCount(info map[string]any, key string) int64 {
	switch v := info[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}
