// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/internal/otelx"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"github.com/twmb/franz-go/plugin/kslog"
	"go.opentelemetry.io/otel"
)

var kafkaLog = otelx.Logger("github.com/demml/scouter-queue/transport/kafka")

// kafkaProducer ships each record in a batch as one gzip-compressed
// message on a fixed topic, relying on the underlying franz-go client for
// per-broker retry (spec §4.6).
type kafkaProducer struct {
	client *kgo.Client
	topic  string

	mu sync.Mutex
}

func newKafkaProducer(ctx context.Context, cfg KafkaConfig) (*kafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, &ConfigError{Err: fmt.Errorf("kafka: Brokers is required")}
	}
	if cfg.Topic == "" {
		return nil, &ConfigError{Err: fmt.Errorf("kafka: Topic is required")}
	}

	opts := []kgo.Opt{
		kgo.WithLogger(kslog.New(otelx.Logger("github.com/twmb/franz-go/pkg/kgo"))),
		kgo.WithHooks(
			kotel.NewTracer(
				kotel.TracerProvider(otel.GetTracerProvider()),
				kotel.TracerPropagator(otel.GetTextMapPropagator()),
			),
			kotel.NewMeter(kotel.MeterProvider(otel.GetMeterProvider())),
		),
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.GzipCompression()),
	}

	if cfg.Username != "" {
		// A configured Username switches the client to TLS. Only TLS is
		// wired here: SASLMechanism, Username and Password are not passed
		// to the client, so no SASL authentication takes place.
		tlsCfg, err := kafkaTLSConfig(cfg)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		if tlsCfg != nil {
			opts = append(opts, kgo.DialTLSConfig(tlsCfg))
		}
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to create client: %w", err)
	}

	return &kafkaProducer{client: client, topic: cfg.Topic}, nil
}

func kafkaTLSConfig(cfg KafkaConfig) (*tls.Config, error) {
	if cfg.CertLocation == "" {
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12, ServerName: cfg.CertLocation}, nil
}

func (p *kafkaProducer) Publish(ctx context.Context, records entity.ServerRecords) error {
	if records.IsEmpty() {
		return nil
	}

	msgs := make([]*kgo.Record, 0, len(records.Records))
	for _, r := range records.Records {
		value, err := json.Marshal(r)
		if err != nil {
			return &PublishError{Transport: KindKafka, Err: fmt.Errorf("encode record: %w", err)}
		}
		msgs = append(msgs, &kgo.Record{Topic: p.topic, Value: value})
	}

	results := p.client.ProduceSync(ctx, msgs...)
	if err := results.FirstErr(); err != nil {
		kafkaLog.Warn("kafka publish failed", "error", err, "topic", p.topic)
		return &PublishError{Transport: KindKafka, Err: err}
	}
	return nil
}

func (p *kafkaProducer) Flush(ctx context.Context) error {
	return p.client.Flush(ctx)
}

func (p *kafkaProducer) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.client.Flush(ctx); err != nil {
		kafkaLog.Warn("kafka shutdown flush failed", "error", err)
	}
	p.client.Close()
	return nil
}
