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
	grpcretry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var grpcLog = otelx.Logger("github.com/demml/scouter-queue/transport/grpc")

// ingestMethod is the fully qualified RPC the server side exposes for
// batch ingestion. The payload is carried as an opaque, JSON-encoded
// wrapperspb.BytesValue rather than a bespoke generated message, since no
// .proto contract ships with this client.
const ingestMethod = "/scouter.ingest.v1.Ingest/PublishRecords"

// grpcProducer invokes a single unary RPC per batch, retrying transient
// failures via the interceptor chain instead of hand-rolled backoff.
type grpcProducer struct {
	conn *grpc.ClientConn

	mu     sync.Mutex
	closed bool
}

func newGRPCProducer(ctx context.Context, cfg GRPCConfig) (*grpcProducer, error) {
	if cfg.URI == "" {
		return nil, &ConfigError{Err: fmt.Errorf("grpc: URI is required")}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	retryOpts := []grpcretry.CallOption{
		grpcretry.WithMax(uint(maxRetries)),
		grpcretry.WithCodes(grpcretry.DefaultRetriableCodes...),
	}

	conn, err := grpc.NewClient(
		cfg.URI,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(grpcretry.UnaryClientInterceptor(retryOpts...)),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc: dial %s: %w", cfg.URI, err)
	}

	return &grpcProducer{conn: conn}, nil
}

func (p *grpcProducer) Publish(ctx context.Context, records entity.ServerRecords) error {
	if records.IsEmpty() {
		return nil
	}

	body, err := json.Marshal(records)
	if err != nil {
		return &PublishError{Transport: KindGRPC, Err: fmt.Errorf("encode batch: %w", err)}
	}

	req := wrapperspb.Bytes(body)
	resp := &wrapperspb.BytesValue{}
	err = p.conn.Invoke(ctx, ingestMethod, req, resp)
	if err != nil {
		grpcLog.Warn("grpc publish failed", "error", err)
		return &PublishError{Transport: KindGRPC, Err: err}
	}
	return nil
}

func (p *grpcProducer) Flush(ctx context.Context) error {
	return nil
}

func (p *grpcProducer) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Close()
}
