package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GenerationEvent is one provider call. Prompts and generated text are never stored.
type GenerationEvent struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId uuid.UUID `gorm:"type:uuid;index"`
	Kind      string    `gorm:"size:20;not null;index"`
	Success   bool

	PromptTokens     int64 `gorm:"default:0"`
	CompletionTokens int64 `gorm:"default:0"`
	LatencyMs        int64

	Params    datatypes.JSON
	Timestamp time.Time
}

type GenerationParams struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
}
