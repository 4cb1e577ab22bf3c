package messaging

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRabbitMQPublisherFailsFastWhileDisconnected(t *testing.T) {
	p := &RabbitMQPublisher{url: "amqp://unreachable", stop: make(chan struct{})}
	defer p.Close()

	// swap(nil, nil) is the state watch leaves the publisher in while redialing.
	p.swap(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := p.PublishGenerationEvent(ctx, GenerationEventPayload{Kind: "chat"})
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRabbitMQReceiverForwardsAndClosesTasks(t *testing.T) {
	r := newRabbitMQReceiver("amqp://unreachable")
	deliveries := make(chan amqp.Delivery, 1)
	go r.run(nil, deliveries)

	deliveries <- amqp.Delivery{RoutingKey: UsageQueue, Body: []byte(`{"Kind":"story"}`)}

	select {
	case task := <-r.Tasks():
		assert.Equal(t, UsageQueue, task.Type())
		assert.JSONEq(t, `{"Kind":"story"}`, string(task.Payload()))
	case <-time.After(time.Second):
		t.Fatal("delivery was not forwarded")
	}

	r.Close()
	r.Close()

	select {
	case _, ok := <-r.Tasks():
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("tasks channel was not closed")
	}
}
