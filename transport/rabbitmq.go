// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/internal/otelx"
	amqp "github.com/rabbitmq/amqp091-go"
)

var rabbitLog = otelx.Logger("github.com/demml/scouter-queue/transport/rabbitmq")

// rabbitMQProducer publishes each batch as a single message body on a
// durable queue, declared once at construction.
type rabbitMQProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string

	mu sync.Mutex
}

func newRabbitMQProducer(ctx context.Context, cfg RabbitMQConfig) (*rabbitMQProducer, error) {
	if cfg.Addr == "" {
		return nil, &ConfigError{Err: fmt.Errorf("rabbitmq: Addr is required")}
	}
	if cfg.Queue == "" {
		return nil, &ConfigError{Err: fmt.Errorf("rabbitmq: Queue is required")}
	}

	conn, err := amqp.Dial(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	_, err = ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare queue %q: %w", cfg.Queue, err)
	}

	return &rabbitMQProducer{conn: conn, channel: ch, queue: cfg.Queue}, nil
}

func (p *rabbitMQProducer) Publish(ctx context.Context, records entity.ServerRecords) error {
	if records.IsEmpty() {
		return nil
	}

	body, err := json.Marshal(records)
	if err != nil {
		return &PublishError{Transport: KindRabbitMQ, Err: fmt.Errorf("encode batch: %w", err)}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		rabbitLog.Warn("rabbitmq publish failed", "error", err, "queue", p.queue)
		return &PublishError{Transport: KindRabbitMQ, Err: err}
	}
	return nil
}

func (p *rabbitMQProducer) Flush(ctx context.Context) error {
	return nil
}

func (p *rabbitMQProducer) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
