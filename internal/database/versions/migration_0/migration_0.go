package migration_0

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

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

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&GenerationEvent{}); err != nil {
		return fmt.Errorf("error creating generation_events table: %w", err)
	}
	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&GenerationEvent{}); err != nil {
		return fmt.Errorf("error dropping generation_events table: %w", err)
	}
	return nil
}
