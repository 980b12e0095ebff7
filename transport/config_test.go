// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvHTTP(t *testing.T) {
	t.Setenv("SCOUTER_SERVER_URI", "https://scouter.example.com/ingest")
	t.Setenv("SCOUTER_USERNAME", "alice")
	t.Setenv("SCOUTER_PASSWORD", "secret")

	cfg, err := FromEnv(KindHTTP)
	require.NoError(t, err)
	assert.Equal(t, "https://scouter.example.com/ingest", cfg.HTTP.ServerURI)
	assert.Equal(t, "alice", cfg.HTTP.Username)
}

func TestFromEnvHTTPMissingURI(t *testing.T) {
	_, err := FromEnv(KindHTTP)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCOUTER_SERVER_URI")
}

func TestFromEnvKafkaBrokerSplit(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092 ,")
	t.Setenv("KAFKA_TOPIC", "scouter-drift")

	cfg, err := FromEnv(KindKafka)
	require.NoError(t, err)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "scouter-drift", cfg.Kafka.Topic)
}

func TestFromEnvKafkaMissingTopic(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:9092")
	_, err := FromEnv(KindKafka)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_TOPIC")
}

func TestFromEnvRabbitMQ(t *testing.T) {
	t.Setenv("RABBITMQ_ADDR", "amqp://localhost:5672")
	t.Setenv("RABBITMQ_QUEUE", "scouter")

	cfg, err := FromEnv(KindRabbitMQ)
	require.NoError(t, err)
	assert.Equal(t, "amqp://localhost:5672", cfg.RabbitMQ.Addr)
}

func TestFromEnvRedisDefaultsAreNotAssumedByValidate(t *testing.T) {
	_, err := FromEnv(KindRedis)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCOUTER_REDIS_ADDR")
}

func TestFromEnvGRPC(t *testing.T) {
	t.Setenv("SCOUTER_GRPC_URI", "scouter.internal:9443")
	cfg, err := FromEnv(KindGRPC)
	require.NoError(t, err)
	assert.Equal(t, "scouter.internal:9443", cfg.GRPC.URI)
}

func TestFromEnvOptionOverride(t *testing.T) {
	t.Setenv("SCOUTER_SERVER_URI", "https://scouter.example.com/ingest")

	cfg, err := FromEnv(KindHTTP, WithBearerToken("tok-123"))
	require.NoError(t, err)
	assert.Equal(t, "tok-123", cfg.HTTP.BearerToken)
}

func TestFromEnvUnknownKind(t *testing.T) {
	_, err := FromEnv(Kind("carrier-pigeon"))
	require.Error(t, err)
}
