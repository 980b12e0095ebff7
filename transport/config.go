// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transport

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// HTTPConfig configures the HTTP transport (spec §6).
type HTTPConfig struct {
	ServerURI   string
	Username    string
	Password    string
	BearerToken string
	Timeout     time.Duration
	MaxRetries  int
}

// KafkaConfig configures the Kafka transport (spec §6).
type KafkaConfig struct {
	Brokers          []string
	Topic            string
	Group            string
	SecurityProtocol string
	SASLMechanism    string
	Username         string
	Password         string
	CertLocation     string
}

// RabbitMQConfig configures the RabbitMQ transport (spec §6).
type RabbitMQConfig struct {
	Addr  string
	Queue string
}

// RedisConfig configures the Redis transport. There's no standard env var
// naming convention shared with the other backends, so SCOUTER_REDIS_ADDR
// and SCOUTER_REDIS_STREAM are used for it.
type RedisConfig struct {
	Addr   string
	Stream string
}

// GRPCConfig configures the gRPC transport (spec §6).
type GRPCConfig struct {
	URI        string
	MaxRetries int
}

// Config is the tagged-variant transport configuration consumed by
// [New]. queue.FromPath does not take a Config; it takes the Producer
// that New returns.
type Config struct {
	Kind     Kind
	HTTP     HTTPConfig
	Kafka    KafkaConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	GRPC     GRPCConfig
}

// FromEnv builds a Config for kind by reading the environment variables
// documented in spec §6, applying opts on top of the env-derived values.
func FromEnv(kind Kind, opts ...Option) (Config, error) {
	cfg := Config{Kind: kind}
	switch kind {
	case KindHTTP:
		cfg.HTTP = HTTPConfig{
			ServerURI:  os.Getenv("SCOUTER_SERVER_URI"),
			Username:   os.Getenv("SCOUTER_USERNAME"),
			Password:   os.Getenv("SCOUTER_PASSWORD"),
			Timeout:    10 * time.Second,
			MaxRetries: 3,
		}
	case KindKafka:
		cfg.Kafka = KafkaConfig{
			Brokers:          splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:            os.Getenv("KAFKA_TOPIC"),
			Group:            os.Getenv("KAFKA_GROUP"),
			SecurityProtocol: os.Getenv("KAFKA_SECURITY_PROTOCOL"),
			SASLMechanism:    os.Getenv("KAFKA_SASL_MECHANISM"),
			Username:         os.Getenv("KAFKA_USERNAME"),
			Password:         os.Getenv("KAFKA_PASSWORD"),
			CertLocation:     os.Getenv("KAFKA_CERT_LOCATION"),
		}
	case KindRabbitMQ:
		cfg.RabbitMQ = RabbitMQConfig{
			Addr:  os.Getenv("RABBITMQ_ADDR"),
			Queue: os.Getenv("RABBITMQ_QUEUE"),
		}
	case KindRedis:
		cfg.Redis = RedisConfig{
			Addr:   os.Getenv("SCOUTER_REDIS_ADDR"),
			Stream: os.Getenv("SCOUTER_REDIS_STREAM"),
		}
	case KindGRPC:
		cfg.GRPC = GRPCConfig{
			URI:        os.Getenv("SCOUTER_GRPC_URI"),
			MaxRetries: 3,
		}
	default:
		return Config{}, &ConfigError{Err: fmt.Errorf("unknown transport kind %q", kind)}
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, &ConfigError{Err: err}
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Kind {
	case KindHTTP:
		if c.HTTP.ServerURI == "" {
			return fmt.Errorf("http transport requires SCOUTER_SERVER_URI")
		}
	case KindKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka transport requires KAFKA_BROKERS")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka transport requires KAFKA_TOPIC")
		}
	case KindRabbitMQ:
		if c.RabbitMQ.Addr == "" {
			return fmt.Errorf("rabbitmq transport requires RABBITMQ_ADDR")
		}
		if c.RabbitMQ.Queue == "" {
			return fmt.Errorf("rabbitmq transport requires RABBITMQ_QUEUE")
		}
	case KindRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis transport requires SCOUTER_REDIS_ADDR")
		}
	case KindGRPC:
		if c.GRPC.URI == "" {
			return fmt.Errorf("grpc transport requires SCOUTER_GRPC_URI")
		}
	default:
		return fmt.Errorf("unknown transport kind %q", c.Kind)
	}
	return nil
}

// Option overrides programmatic fields of a [Config] built by [FromEnv].
type Option func(*Config)

// WithBearerToken sets HTTP bearer-token authentication, taking precedence
// over basic auth.
func WithBearerToken(token string) Option {
	return func(c *Config) { c.HTTP.BearerToken = token }
}

// WithHTTPTimeout overrides the HTTP transport's per-request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Config) { c.HTTP.Timeout = d }
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
