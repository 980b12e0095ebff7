// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transport

import (
	"context"
	"time"

	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/internal/otelx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func transportKindAttr(k Kind) attribute.KeyValue {
	return attribute.String("scouter.transport.kind", string(k))
}

// metricsRecorder records publish counts and latency per transport Kind,
// mirroring the single recorder-per-component shape the reference event
// loop uses for its own instruments.
type metricsRecorder struct {
	published metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram
}

func newMetricsRecorder() *metricsRecorder {
	meter := otelx.Meter("github.com/demml/scouter-queue/transport")

	published, err := meter.Int64Counter(
		"scouter.transport.published",
		metric.WithDescription("number of record batches successfully published"),
	)
	if err != nil {
		published, _ = meter.Int64Counter("scouter.transport.published")
	}

	failed, err := meter.Int64Counter(
		"scouter.transport.failed",
		metric.WithDescription("number of record batches that failed to publish"),
	)
	if err != nil {
		failed, _ = meter.Int64Counter("scouter.transport.failed")
	}

	duration, err := meter.Float64Histogram(
		"scouter.transport.publish_duration",
		metric.WithDescription("publish call latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		duration, _ = meter.Float64Histogram("scouter.transport.publish_duration")
	}

	return &metricsRecorder{published: published, failed: failed, duration: duration}
}

// instrumentedProducer wraps a concrete Producer with publish-count and
// latency instrumentation, keyed by transport Kind.
type instrumentedProducer struct {
	inner    Producer
	kind     Kind
	recorder *metricsRecorder
}

func newInstrumentedProducer(kind Kind, inner Producer, recorder *metricsRecorder) Producer {
	return &instrumentedProducer{inner: inner, kind: kind, recorder: recorder}
}

func (p *instrumentedProducer) Publish(ctx context.Context, records entity.ServerRecords) error {
	start := time.Now()
	err := p.inner.Publish(ctx, records)
	elapsed := time.Since(start).Seconds()

	attrs := metric.WithAttributes(transportKindAttr(p.kind))
	p.recorder.duration.Record(ctx, elapsed, attrs)
	if err != nil {
		p.recorder.failed.Add(ctx, 1, attrs)
		return err
	}
	p.recorder.published.Add(ctx, 1, attrs)
	return nil
}

func (p *instrumentedProducer) Flush(ctx context.Context) error {
	return p.inner.Flush(ctx)
}

func (p *instrumentedProducer) Shutdown(ctx context.Context) error {
	return p.inner.Shutdown(ctx)
}
