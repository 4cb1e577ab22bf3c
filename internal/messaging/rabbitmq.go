package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerPrefetch = 10

// dial connects and opens a channel with the usage queue declared.
func dial(url string, attempts int) (*amqp.Connection, *amqp.Channel, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(RetryDelay)
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			slog.Warn("failed to connect to rabbitmq", "attempt", i+1, "max_attempts", attempts, "error", err)
			lastErr = err
			continue
		}

		channel, err := conn.Channel()
		if err == nil {
			_, err = channel.QueueDeclare(UsageQueue, true, false, false, false, nil)
		}
		if err != nil {
			slog.Warn("failed to open rabbitmq channel", "queue", UsageQueue, "error", err)
			closeConn(conn)
			lastErr = err
			continue
		}

		return conn, channel, nil
	}
	return nil, nil, fmt.Errorf("unable to reach rabbitmq after %d attempts: %w", attempts, lastErr)
}

func closeConn(conn *amqp.Connection) {
	if conn == nil || conn.IsClosed() {
		return
	}
	if err := conn.Close(); err != nil {
		slog.Error("error closing rabbitmq connection", "error", err)
	}
}

// waitOrStop sleeps for d and reports false if stop fired first.
func waitOrStop(stop <-chan struct{}, d time.Duration) bool {
	select {
	case <-stop:
		return false
	case <-time.After(d):
		return true
	}
}

// RabbitMQPublisher sends usage events to the broker. While the broker is
// unreachable publishing fails with ErrNotConnected instead of waiting.
type RabbitMQPublisher struct {
	url string

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	stop      chan struct{}
	closeOnce sync.Once
}

func NewRabbitMQPublisher(rabbitMQURL string) (*RabbitMQPublisher, error) {
	conn, channel, err := dial(rabbitMQURL, MaxConnectRetry)
	if err != nil {
		return nil, err
	}

	p := &RabbitMQPublisher{url: rabbitMQURL, stop: make(chan struct{})}
	p.swap(conn, channel)
	go p.watch(channel)

	slog.Info("rabbitmq publisher connected")
	return p, nil
}

// swap installs a new connection, closing the old one. It returns false and
// discards conn when the publisher is already closed.
func (p *RabbitMQPublisher) swap(conn *amqp.Connection, channel *amqp.Channel) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.stop:
		closeConn(conn)
		return false
	default:
	}

	if p.conn != conn {
		closeConn(p.conn)
	}
	p.conn, p.channel = conn, channel
	return true
}

// watch redials after the broker drops the channel. The lock is held only
// while swapping connections, never while dialing.
func (p *RabbitMQPublisher) watch(channel *amqp.Channel) {
	for {
		closed := channel.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-p.stop:
			return
		case amqpErr, ok := <-closed:
			if !ok {
				return
			}
			slog.Warn("rabbitmq publisher channel closed, reconnecting", "error", amqpErr)
		}

		p.swap(nil, nil)

		for {
			if !waitOrStop(p.stop, RetryDelay) {
				return
			}
			conn, next, err := dial(p.url, 1)
			if err != nil {
				continue
			}
			if !p.swap(conn, next) {
				return
			}
			channel = next
			slog.Info("rabbitmq publisher reconnected")
			break
		}
	}
}

func (p *RabbitMQPublisher) PublishGenerationEvent(ctx context.Context, payload GenerationEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	p.mu.RLock()
	channel := p.channel
	p.mu.RUnlock()

	if channel == nil || channel.IsClosed() {
		return ErrNotConnected
	}

	err = channel.PublishWithContext(ctx, "", UsageQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    payload.Timestamp,
		Body:         body,
	})
	if err != nil {
		slog.Error("failed to publish generation event", "session_id", payload.SessionId, "error", err)
		return fmt.Errorf("failed to publish generation event: %w", err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)

		p.mu.Lock()
		defer p.mu.Unlock()
		closeConn(p.conn)
		p.conn, p.channel = nil, nil
	})
}

type RabbitMQTask struct {
	d amqp.Delivery
}

func (t *RabbitMQTask) Type() string {
	return t.d.RoutingKey
}

func (t *RabbitMQTask) Payload() []byte {
	return t.d.Body
}

func (t *RabbitMQTask) Ack() error {
	return t.d.Ack(false)
}

// Nack drops the event; usage events are never requeued.
func (t *RabbitMQTask) Nack() error {
	return t.d.Nack(false, false)
}

func (t *RabbitMQTask) Reject() error {
	return t.d.Reject(false)
}

// RabbitMQReceiver consumes the usage queue. Tasks is closed once Close has
// been called, so a range over it ends.
type RabbitMQReceiver struct {
	url   string
	tasks chan Task

	stop      chan struct{}
	closeOnce sync.Once
}

func consume(channel *amqp.Channel) (<-chan amqp.Delivery, error) {
	if err := channel.Qos(consumerPrefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set channel qos: %w", err)
	}
	deliveries, err := channel.Consume(UsageQueue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from rabbitmq queue %s: %w", UsageQueue, err)
	}
	return deliveries, nil
}

func NewRabbitMQReceiver(rabbitMQURL string) (*RabbitMQReceiver, error) {
	conn, channel, err := dial(rabbitMQURL, MaxConnectRetry)
	if err != nil {
		return nil, err
	}

	deliveries, err := consume(channel)
	if err != nil {
		closeConn(conn)
		return nil, err
	}

	r := newRabbitMQReceiver(rabbitMQURL)
	go r.run(conn, deliveries)

	slog.Info("rabbitmq receiver consuming", "queue", UsageQueue)
	return r, nil
}

func newRabbitMQReceiver(url string) *RabbitMQReceiver {
	return &RabbitMQReceiver{
		url:   url,
		tasks: make(chan Task),
		stop:  make(chan struct{}),
	}
}

func (r *RabbitMQReceiver) run(conn *amqp.Connection, deliveries <-chan amqp.Delivery) {
	defer close(r.tasks)

	for {
		stopped := !r.forward(deliveries)
		closeConn(conn)
		if stopped {
			return
		}

		slog.Warn("rabbitmq consumer lost, reconnecting")
		var ok bool
		conn, deliveries, ok = r.redial()
		if !ok {
			return
		}
		slog.Info("rabbitmq consumer reconnected")
	}
}

// forward hands deliveries to Tasks until the broker closes them (true) or
// the receiver is closed (false).
func (r *RabbitMQReceiver) forward(deliveries <-chan amqp.Delivery) bool {
	for {
		select {
		case <-r.stop:
			return false
		case d, ok := <-deliveries:
			if !ok {
				return true
			}
			select {
			case r.tasks <- &RabbitMQTask{d: d}:
			case <-r.stop:
				return false
			}
		}
	}
}

func (r *RabbitMQReceiver) redial() (*amqp.Connection, <-chan amqp.Delivery, bool) {
	for waitOrStop(r.stop, RetryDelay) {
		conn, channel, err := dial(r.url, 1)
		if err != nil {
			continue
		}
		deliveries, err := consume(channel)
		if err != nil {
			slog.Warn("failed to restart rabbitmq consumer", "error", err)
			closeConn(conn)
			continue
		}
		return conn, deliveries, true
	}
	return nil, nil, false
}

func (r *RabbitMQReceiver) Tasks() <-chan Task {
	return r.tasks
}

func (r *RabbitMQReceiver) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
	})
}
