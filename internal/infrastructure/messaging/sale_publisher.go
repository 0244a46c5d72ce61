// Package messaging publishes domain events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/repository"
)

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialFunc opens a channel and returns a func releasing it together with
// its connection.
type dialFunc func(url string) (channel, func(), error)

func dialAMQP(url string) (channel, func(), error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, func() { _ = conn.Close() }, nil
}

// SalePublisher publishes sale completed events to a durable queue. The
// connection is opened on first use and reopened after a failed publish.
type SalePublisher struct {
	url    string
	queue  string
	dial   dialFunc
	logger *zap.Logger

	mu      sync.Mutex
	ch      channel
	release func()
}

var _ repository.SaleEventPublisher = (*SalePublisher)(nil)

// NewSalePublisher creates a publisher for queue on the broker at url
func NewSalePublisher(url, queue string, logger *zap.Logger) *SalePublisher {
	return &SalePublisher{url: url, queue: queue, dial: dialAMQP, logger: logger}
}

// PublishSaleCompleted sends event as a persistent JSON message
func (p *SalePublisher) PublishSaleCompleted(ctx context.Context, event entity.SaleCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sale event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		p.logger.Warn("rabbitmq unavailable", zap.String("queue", p.queue), zap.Error(err))
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.SaleID,
		Timestamp:    time.Now().UTC(),
		Type:         "sale.completed",
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.logger.Warn("rabbitmq publish failed", zap.String("queue", p.queue), zap.Error(err))
		p.closeLocked()
		return fmt.Errorf("publish sale event: %w", err)
	}

	p.logger.Debug("sale event published", zap.String("queue", p.queue), zap.String("sale_id", event.SaleID))
	return nil
}

// Close releases the broker connection
func (p *SalePublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *SalePublisher) channelLocked() (channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	ch, release, err := p.dial(p.url)
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		release()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	p.ch, p.release = ch, release
	return ch, nil
}

func (p *SalePublisher) closeLocked() {
	if p.ch == nil {
		return
	}
	_ = p.ch.Close()
	p.release()
	p.ch, p.release = nil, nil
}
