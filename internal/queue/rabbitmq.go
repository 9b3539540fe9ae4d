package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends VideoQueued messages to a durable queue.
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

// NewPublisher connects to url and declares queue.
func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := declare(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// PublishVideoQueued announces videoID as a persistent message.
func (p *Publisher) PublishVideoQueued(ctx context.Context, videoID string) error {
	body, err := encodeVideoQueued(videoID, time.Now())
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    videoID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Consumer turns queue deliveries into wake-up signals for the worker loop.
type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger zerolog.Logger
}

// NewConsumer connects to url, declares queue and limits unacked deliveries to one.
func NewConsumer(url, queue string, logger zerolog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error to open channel: %w", err)
	}
	if err := declare(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("error QoS: %w", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: queue, logger: logger}, nil
}

// Wake consumes the queue until ctx is done. Every valid message is acked and
// produces at most one pending signal; the database stays the source of truth
// for which video is claimed.
func (c *Consumer) Wake(ctx context.Context) (<-chan struct{}, error) {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("error to consume queue: %w", err)
	}
	wake := make(chan struct{}, 1)
	go func() {
		defer close(wake)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					c.logger.Warn().Str("queue", c.queue).Msg("rabbitmq deliveries closed")
					return
				}
				c.handle(d, wake)
			}
		}
	}()
	return wake, nil
}

func (c *Consumer) handle(d amqp.Delivery, wake chan<- struct{}) {
	msg, err := decodeVideoQueued(d.Body)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed queue message")
		_ = d.Nack(false, false)
		return
	}
	if err := d.Ack(false); err != nil {
		c.logger.Warn().Err(err).Str("video_id", msg.VideoID).Msg("ack failed")
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
