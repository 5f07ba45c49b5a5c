// Package messaging publishes and consumes period events over RabbitMQ.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
)

const (
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

// Client publishes period.closed events to a direct exchange and consumes them from a
// durable queue bound with the queue name as routing key.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewClient dials the broker and declares the exchange and queue.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := c.setup(channel); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel = conn, channel
	c.mu.Unlock()
	return nil
}

func (c *Client) setup(channel *amqp091.Channel) error {
	if err := channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) currentChannel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// PublishPeriodClosed publishes a persistent period.closed message.
func (c *Client) PublishPeriodClosed(ctx context.Context, event entity.PeriodClosedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := NewPeriodClosedMessage(event).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	publish := func() error {
		channel := c.currentChannel()
		if channel == nil || channel.IsClosed() {
			return amqp091.ErrClosed
		}
		return channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	}

	err = publish()
	if err != nil && isConnectionError(err) {
		slog.WarnContext(ctx, "AMQP connection lost, reconnecting", "error", err)
		if connErr := c.connect(); connErr != nil {
			return fmt.Errorf("publish message: %w", errors.Join(err, connErr))
		}
		err = publish()
	}
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(ctx, "Published period closed message",
		"owner_id", event.OwnerID,
		"period", event.Key.String(),
		"exchange", c.exchangeName,
		"queue", c.queueName,
	)
	return nil
}

// ConsumePeriodClosed delivers period.closed messages to handler until ctx is done,
// reconnecting with exponential backoff when the broker connection drops.
func (c *Client) ConsumePeriodClosed(ctx context.Context, handler func(context.Context, entity.PeriodClosedEvent) error) error {
	for attempt := 0; ; attempt++ {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "AMQP consumer disconnected, retrying",
			"error", err,
			"attempt", attempt+1,
			"backoff", wait,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		if err := c.connect(); err != nil {
			slog.ErrorContext(ctx, "Failed to reconnect to AMQP", "error", err)
			continue
		}
		attempt = -1
	}
}

func (c *Client) consume(ctx context.Context, handler func(context.Context, entity.PeriodClosedEvent) error) error {
	channel := c.currentChannel()
	if channel == nil || channel.IsClosed() {
		return amqp091.ErrClosed
	}

	deliveries, err := channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming period closed messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return amqp091.ErrClosed
			}
			switch handleDelivery(ctx, delivery.Body, handler) {
			case ack:
				_ = delivery.Ack(false)
			case reject:
				_ = delivery.Nack(false, false)
			case requeue:
				_ = delivery.Nack(false, true)
			}
		}
	}
}

type deliveryAction int

const (
	ack deliveryAction = iota
	reject
	requeue
)

// handleDelivery decodes and handles one message body. Malformed messages are rejected
// without requeue. A period reopened before the message arrived acks it, a locked target
// period rejects it, and any other handler error requeues it.
func handleDelivery(ctx context.Context, body []byte, handler func(context.Context, entity.PeriodClosedEvent) error) deliveryAction {
	msg, err := PeriodClosedMessageFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		return reject
	}
	event, err := msg.Event()
	if err != nil {
		slog.ErrorContext(ctx, "Invalid period closed message", "error", err)
		return reject
	}

	if err := handler(ctx, event); err != nil {
		switch {
		case errors.Is(err, domainerror.ErrPeriodNotClosed):
			slog.WarnContext(ctx, "Skipping period closed message for reopened period",
				"owner_id", event.OwnerID,
				"period", event.Key.String(),
			)
			return ack
		case errors.Is(err, domainerror.ErrPeriodLocked):
			slog.ErrorContext(ctx, "Rejecting period closed message, target period is closed",
				"owner_id", event.OwnerID,
				"period", event.Key.String(),
				"error", err,
			)
			return reject
		}
		slog.ErrorContext(ctx, "Failed to handle period closed message",
			"owner_id", event.OwnerID,
			"period", event.Key.String(),
			"error", err,
		)
		return requeue
	}

	slog.InfoContext(ctx, "Processed period closed message",
		"owner_id", event.OwnerID,
		"period", event.Key.String(),
	)
	return ack
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	wait := time.Second << attempt
	if wait > maxBackoff {
		return maxBackoff
	}
	return wait
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{"connection", "EOF", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
