// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelx centralizes the OpenTelemetry handles used across the
// ingestion engine so every package obtains its logger, tracer, and meter
// the same way.
package otelx

import (
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Logger returns a [slog.Logger] bridged to the globally configured
// OpenTelemetry LoggerProvider. The host application is responsible for
// configuring that provider; if it never does, otelslog falls back to a
// no-op logger.
func Logger(name string) *slog.Logger {
	return otelslog.NewLogger(name)
}

// Tracer returns the package-scoped tracer for name, backed by the global
// TracerProvider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Meter returns the package-scoped meter for name, backed by the global
// MeterProvider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}
