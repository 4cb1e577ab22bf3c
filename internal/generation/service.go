package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrNoChoices = errors.New("provider returned no completion choices")

type CompletionRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

type Completion struct {
	Text  string
	Usage Usage
}

// Completer issues one chat completion with a single user message.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

type Service struct {
	completer Completer
	timeout   time.Duration
}

func NewService(completer Completer, timeout time.Duration) *Service {
	return &Service{completer: completer, timeout: timeout}
}

// Generate never returns an error: provider failures come back as a Failure result.
// Callers must not pass empty input.
func (s *Service) Generate(ctx context.Context, input string, kind Kind) Result {
	tmpl, err := TemplateFor(kind)
	if err != nil {
		return Failure(err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := CompletionRequest{
		Model:       Model,
		Prompt:      tmpl.Prefix + input,
		MaxTokens:   tmpl.MaxOutputTokens,
		Temperature: tmpl.Temperature,
	}

	completion, err := s.completer.Complete(ctx, req)
	if err != nil {
		slog.Warn("content generation failed", "kind", kind, "error", err)
		return Failure(err)
	}
	if completion.Text == "" {
		slog.Warn("content generation returned empty completion", "kind", kind)
		return Failure(ErrNoChoices)
	}

	res := Success(completion.Text)
	res.Usage = completion.Usage
	return res
}
