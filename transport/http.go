// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/internal/otelx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var httpLog = otelx.Logger("github.com/demml/scouter-queue/transport/http")

// httpProducer ships each batch as a single POST with a JSON body,
// authenticating via bearer token or HTTP basic auth, retrying on 5xx and
// transport errors with bounded exponential backoff and jitter (spec §9's
// third open question: capped at 3 attempts).
type httpProducer struct {
	cfg    HTTPConfig
	client *http.Client
}

func newHTTPProducer(cfg HTTPConfig) (*httpProducer, error) {
	if cfg.ServerURI == "" {
		return nil, &ConfigError{Err: fmt.Errorf("http: ServerURI is required")}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return &httpProducer{cfg: cfg, client: client}, nil
}

func (p *httpProducer) Publish(ctx context.Context, records entity.ServerRecords) error {
	if records.IsEmpty() {
		return nil
	}

	body, err := json.Marshal(records)
	if err != nil {
		return &PublishError{Transport: KindHTTP, Err: fmt.Errorf("encode batch: %w", err)}
	}

	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := backoffWithJitter(attempt)
			select {
			case <-ctx.Done():
				return &PublishError{Transport: KindHTTP, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ServerURI, bytes.NewReader(body))
		if err != nil {
			return &PublishError{Transport: KindHTTP, Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		p.authenticate(req)

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			httpLog.Warn("http publish attempt failed", "attempt", attempt+1, "error", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
			httpLog.Warn("http publish got server error", "attempt", attempt+1, "status", resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return &PublishError{Transport: KindHTTP, Err: fmt.Errorf("server rejected batch: %d", resp.StatusCode)}
		}
		return nil
	}
	return &PublishError{Transport: KindHTTP, Err: fmt.Errorf("exhausted %d retries: %w", p.cfg.MaxRetries, lastErr)}
}

func (p *httpProducer) authenticate(req *http.Request) {
	if p.cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.BearerToken)
		return
	}
	if p.cfg.Username != "" {
		req.SetBasicAuth(p.cfg.Username, p.cfg.Password)
	}
}

func (p *httpProducer) Flush(ctx context.Context) error {
	return nil
}

func (p *httpProducer) Shutdown(ctx context.Context) error {
	p.client.CloseIdleConnections()
	return nil
}

func backoffWithJitter(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}
