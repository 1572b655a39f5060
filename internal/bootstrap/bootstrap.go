// Package bootstrap holds the wiring shared by the api and worker binaries.
package bootstrap

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-scheduler/config"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/messaging"
	"github.com/jwalitptl/clinic-scheduler/pkg/messaging/kafka"
	"github.com/jwalitptl/clinic-scheduler/pkg/messaging/redis"
)

// NewLogger builds the application logger and installs it as the global
// zerolog logger used by the HTTP middleware.
func NewLogger(cfg config.LogConfig, service string) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Pretty,
	}).WithFields(map[string]interface{}{"app": service})

	log.Logger = *l.Zerolog()
	return l
}

// NewBroker connects to the broker selected by cfg.Driver. The "none" driver
// drops every message.
func NewBroker(cfg config.MessagingConfig, l *logger.Logger) (messaging.Broker, error) {
	switch strings.ToLower(cfg.Driver) {
	case "redis":
		return redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, l.Zerolog())
	case "kafka":
		return kafka.NewKafkaBroker(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
		}, l.Zerolog())
	case "none", "":
		return messaging.Nop{}, nil
	}
	return nil, fmt.Errorf("unsupported messaging driver: %q", cfg.Driver)
}
