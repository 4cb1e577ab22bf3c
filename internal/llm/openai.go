package llm

import (
	"context"
	"log/slog"

	"creative-studio/internal/generation"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAI struct {
	client openai.Client
}

func NewOpenAI(apiKey, baseURL string) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAI{client: openai.NewClient(opts...)}
}

func (o *OpenAI) Complete(ctx context.Context, req generation.CompletionRequest) (generation.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
		Model:       req.Model,
		MaxTokens:   openai.Int(req.MaxTokens),
		Temperature: openai.Float(req.Temperature),
	}

	res, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		slog.Error("openai error: chat completions failed", "error", err)
		return generation.Completion{}, err
	}

	if len(res.Choices) == 0 {
		return generation.Completion{}, generation.ErrNoChoices
	}

	return generation.Completion{
		Text: res.Choices[0].Message.Content,
		Usage: generation.Usage{
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
		},
	}, nil
}
