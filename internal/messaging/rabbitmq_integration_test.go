//go:build integration

// Run with: go test -tags=integration ./internal/messaging/...

package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"creative-studio/internal/messaging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

func TestRabbitMQPublishConsumeGenerationEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12.11-management-alpine")
	require.NoError(t, err, "Failed to start RabbitMQ container")
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate rabbitmq container: %v", err)
		}
	}()

	url, err := container.AmqpURL(ctx)
	require.NoError(t, err)

	publisher, err := messaging.NewRabbitMQPublisher(url)
	require.NoError(t, err)
	defer publisher.Close()

	receiver, err := messaging.NewRabbitMQReceiver(url)
	require.NoError(t, err)
	defer receiver.Close()

	payload := messaging.GenerationEventPayload{
		EventId:          uuid.New(),
		SessionId:        uuid.New(),
		Kind:             "image_prompt",
		Model:            "gpt-3.5-turbo",
		MaxTokens:        100,
		Success:          true,
		PromptTokens:     20,
		CompletionTokens: 80,
		Timestamp:        time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, publisher.PublishGenerationEvent(ctx, payload))

	select {
	case task := <-receiver.Tasks():
		assert.Equal(t, messaging.UsageQueue, task.Type())

		var received messaging.GenerationEventPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &received))
		assert.Equal(t, payload, received)
		assert.NoError(t, task.Ack())
	case <-ctx.Done():
		t.Fatal("timed out waiting for generation event")
	}
}
