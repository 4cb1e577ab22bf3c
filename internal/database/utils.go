package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

type KindUsage struct {
	Kind             string
	Generations      int64
	Failures         int64
	PromptTokens     int64
	CompletionTokens int64
}

func SaveGenerationEvent(ctx context.Context, txn *gorm.DB, event *GenerationEvent, params GenerationParams) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("could not marshal generation params: %w", err)
	}
	event.Params = raw

	if err := txn.WithContext(ctx).Create(event).Error; err != nil {
		slog.Error("error saving generation event", "event_id", event.Id, "error", err)
		return err
	}
	return nil
}

func UsageByKind(ctx context.Context, txn *gorm.DB) ([]KindUsage, error) {
	var usage []KindUsage
	err := txn.WithContext(ctx).
		Model(&GenerationEvent{}).
		Select(`kind,
			COUNT(*) AS generations,
			SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures,
			COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS completion_tokens`).
		Group("kind").
		Order("kind ASC").
		Scan(&usage).Error
	if err != nil {
		return nil, fmt.Errorf("error aggregating generation usage: %w", err)
	}
	return usage, nil
}
