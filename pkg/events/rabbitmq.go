package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type rabbitPublisher struct {
	mu       sync.Mutex
	url      string
	conn     *amqp.Connection
	ch       amqpChannel
	open     func() (amqpChannel, error)
	exchange string
	log      *zap.Logger
}

// NewRabbitPublisher dials url and declares exchange as a durable topic exchange.
// A channel or connection closed by the broker is reopened on the next Publish.
func NewRabbitPublisher(url, exchange string, log *zap.Logger) (Publisher, error) {
	p := &rabbitPublisher{
		url:      url,
		exchange: exchange,
		log:      log.With(zap.String("publisher", "rabbitmq")),
	}
	p.open = p.openChannel

	ch, err := p.open()
	if err != nil {
		if p.conn != nil {
			_ = p.conn.Close()
		}
		return nil, err
	}
	p.ch = ch

	log.Info("RabbitMQ publisher ready", zap.String("exchange", exchange))
	return p, nil
}

// openChannel redials when the connection is gone, then opens a channel and declares the exchange.
func (p *rabbitPublisher) openChannel() (amqpChannel, error) {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	return ch, nil
}

// channel returns a live channel, reopening it after the broker closed it. Caller holds mu.
func (p *rabbitPublisher) channel() (amqpChannel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	p.log.Warn("RabbitMQ channel closed, reopening")
	ch, err := p.open()
	if err != nil {
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err != nil && ch.IsClosed() {
		// the broker closed the channel under us; one retry on a fresh one
		if ch, err = p.channel(); err == nil {
			err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
		}
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.Debug("Event published", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

func (p *rabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
