package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/config"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/messaging"
)

func TestNewBroker(t *testing.T) {
	b, err := NewBroker(config.MessagingConfig{Driver: "none"}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, messaging.Nop{}, b)

	_, err = NewBroker(config.MessagingConfig{Driver: "carrier-pigeon"}, logger.Nop())
	assert.ErrorContains(t, err, "unsupported messaging driver")

	_, err = NewBroker(config.MessagingConfig{Driver: "kafka"}, logger.Nop())
	assert.Error(t, err, "kafka without brokers")

	_, err = NewBroker(config.MessagingConfig{Driver: "redis", Redis: config.RedisConfig{URL: "not a url"}}, logger.Nop())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	l := NewLogger(config.LogConfig{Level: "debug"}, "test")
	require.NotNil(t, l)
	assert.Equal(t, logger.DebugLevel, l.Zerolog().GetLevel())
}
