package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	UsageQueue      = "generation_usage_queue"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

var (
	ErrQueueClosed  = errors.New("queue is closed")
	ErrQueueFull    = errors.New("queue is full")
	ErrNotConnected = errors.New("rabbitmq connection is not available")
)

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// GenerationEventPayload describes one provider call. It never carries the
// prompt or the generated text.
type GenerationEventPayload struct {
	EventId          uuid.UUID
	SessionId        uuid.UUID
	Kind             string
	Model            string
	MaxTokens        int64
	Success          bool
	PromptTokens     int64
	CompletionTokens int64
	LatencyMs        int64
	Timestamp        time.Time
}

type Publisher interface {
	PublishGenerationEvent(ctx context.Context, payload GenerationEventPayload) error

	Close()
}

type Reciever interface {
	Tasks() <-chan Task

	Close()
}
