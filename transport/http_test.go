// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/demml/scouter-queue/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() entity.ServerRecords {
	return entity.NewServerRecords([]entity.Record{
		entity.SpcRecord{Feature: "a", Value: 1.0},
	})
}

func TestHTTPProducerPublishSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p, err := newHTTPProducer(HTTPConfig{ServerURI: srv.URL, BearerToken: "tok"})
	require.NoError(t, err)

	err = p.Publish(context.Background(), testRecords())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestHTTPProducerEmptyBatchIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	p, err := newHTTPProducer(HTTPConfig{ServerURI: srv.URL})
	require.NoError(t, err)

	err = p.Publish(context.Background(), entity.ServerRecords{})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestHTTPProducerRetriesOn5xxThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := newHTTPProducer(HTTPConfig{ServerURI: srv.URL, MaxRetries: 3})
	require.NoError(t, err)

	err = p.Publish(context.Background(), testRecords())
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestHTTPProducerDoesNotRetry4xx(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p, err := newHTTPProducer(HTTPConfig{ServerURI: srv.URL, MaxRetries: 3})
	require.NoError(t, err)

	err = p.Publish(context.Background(), testRecords())
	require.Error(t, err)
	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestHTTPProducerExhaustsRetriesOn5xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := newHTTPProducer(HTTPConfig{ServerURI: srv.URL, MaxRetries: 2})
	require.NoError(t, err)

	start := time.Now()
	err = p.Publish(context.Background(), testRecords())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHTTPProducerMissingServerURI(t *testing.T) {
	_, err := newHTTPProducer(HTTPConfig{})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestHTTPProducerShutdownIdempotent(t *testing.T) {
	p, err := newHTTPProducer(HTTPConfig{ServerURI: "https://example.com"})
	require.NoError(t, err)

	require.NoError(t, p.Shutdown(context.Background()))
	require.NoError(t, p.Shutdown(context.Background()))
}
