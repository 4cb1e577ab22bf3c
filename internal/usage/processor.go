package usage

import (
	"context"
	"encoding/json"
	"log/slog"

	"creative-studio/internal/database"
	"creative-studio/internal/messaging"

	"gorm.io/gorm"
)

// Processor drains generation events from the queue into the usage ledger.
type Processor struct {
	db       *gorm.DB
	reciever messaging.Reciever
}

func NewProcessor(db *gorm.DB, reciever messaging.Reciever) *Processor {
	return &Processor{db: db, reciever: reciever}
}

func (proc *Processor) Start() {
	slog.Info("starting usage processor")

	for task := range proc.reciever.Tasks() {
		proc.ProcessTask(task)
	}

	slog.Info("usage processor stopped")
}

func (proc *Processor) Stop() {
	slog.Info("stopping usage processor")

	proc.reciever.Close()
}

func (proc *Processor) ProcessTask(task messaging.Task) {
	ctx := context.Background()

	var err error
	switch task.Type() {
	case messaging.UsageQueue:
		var payload messaging.GenerationEventPayload
		if err = json.Unmarshal(task.Payload(), &payload); err != nil {
			slog.Error("error unmarshalling generation event", "error", err)
			if err := task.Reject(); err != nil {
				slog.Error("error rejecting message from queue", "error", err)
			}
			return
		}
		err = proc.saveEvent(ctx, payload)

	default:
		slog.Error("received task of unknown type", "type", task.Type())
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting message from queue", "error", err)
		}
		return
	}

	if err != nil {
		if err := task.Nack(); err != nil {
			slog.Error("error nacking message from queue", "error", err)
		}
		return
	}

	if err := task.Ack(); err != nil {
		slog.Error("error acking message from queue", "error", err)
	}
}

func (proc *Processor) saveEvent(ctx context.Context, payload messaging.GenerationEventPayload) error {
	event := &database.GenerationEvent{
		Id:               payload.EventId,
		SessionId:        payload.SessionId,
		Kind:             payload.Kind,
		Success:          payload.Success,
		PromptTokens:     payload.PromptTokens,
		CompletionTokens: payload.CompletionTokens,
		LatencyMs:        payload.LatencyMs,
		Timestamp:        payload.Timestamp,
	}
	params := database.GenerationParams{Model: payload.Model, MaxTokens: payload.MaxTokens}

	return database.SaveGenerationEvent(ctx, proc.db, event, params)
}
