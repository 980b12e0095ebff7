// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package transport implements the pluggable outbound side of the
// ingestion engine: a capability set {Publish, Flush, Shutdown} (spec
// §4.6) with concrete variants for HTTP, Kafka, RabbitMQ, Redis, and gRPC
// backends.
package transport

import (
	"context"
	"fmt"

	"github.com/demml/scouter-queue/entity"
)

// Producer is the capability set every transport variant implements.
//
// Publish MUST NOT block the event loop longer than its configured
// timeout; on timeout or error it MUST return a typed error and MUST NOT
// panic. Shutdown MUST be idempotent.
type Producer interface {
	Publish(ctx context.Context, records entity.ServerRecords) error
	Flush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Kind tags which transport variant a [Config] describes.
type Kind string

const (
	KindHTTP     Kind = "http"
	KindKafka    Kind = "kafka"
	KindRabbitMQ Kind = "rabbitmq"
	KindRedis    Kind = "redis"
	KindGRPC     Kind = "grpc"
)

// New constructs the concrete [Producer] for cfg's kind, wrapped with
// publish-count and latency instrumentation.
func New(ctx context.Context, cfg Config) (Producer, error) {
	var (
		inner Producer
		err   error
	)
	switch cfg.Kind {
	case KindHTTP:
		inner, err = newHTTPProducer(cfg.HTTP)
	case KindKafka:
		inner, err = newKafkaProducer(ctx, cfg.Kafka)
	case KindRabbitMQ:
		inner, err = newRabbitMQProducer(ctx, cfg.RabbitMQ)
	case KindRedis:
		inner, err = newRedisProducer(cfg.Redis)
	case KindGRPC:
		inner, err = newGRPCProducer(ctx, cfg.GRPC)
	default:
		return nil, &ConfigError{Err: fmt.Errorf("unknown transport kind %q", cfg.Kind)}
	}
	if err != nil {
		return nil, err
	}
	return newInstrumentedProducer(cfg.Kind, inner, newMetricsRecorder()), nil
}
