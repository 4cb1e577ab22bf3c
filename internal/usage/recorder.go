package usage

import (
	"context"
	"log/slog"
	"time"

	"creative-studio/internal/generation"
	"creative-studio/internal/messaging"

	"github.com/google/uuid"
)

const publishTimeout = 5 * time.Second

// Recorder publishes one usage event per provider call. Publishing errors are
// logged and never affect the generation result.
type Recorder struct {
	publisher messaging.Publisher
}

func NewRecorder(publisher messaging.Publisher) *Recorder {
	return &Recorder{publisher: publisher}
}

func (r *Recorder) Observe(ctx context.Context, sessionId uuid.UUID, kind generation.Kind, result generation.Result, latency time.Duration) {
	var maxTokens int64
	if tmpl, err := generation.TemplateFor(kind); err == nil {
		maxTokens = tmpl.MaxOutputTokens
	}

	payload := messaging.GenerationEventPayload{
		EventId:          uuid.New(),
		SessionId:        sessionId,
		Kind:             kind.String(),
		Model:            generation.Model,
		MaxTokens:        maxTokens,
		Success:          result.OK(),
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		LatencyMs:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := r.publisher.PublishGenerationEvent(ctx, payload); err != nil {
		slog.Warn("failed to publish generation event", "session_id", sessionId, "kind", kind, "error", err)
	}
}
