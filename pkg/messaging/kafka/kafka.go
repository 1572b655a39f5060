package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jwalitptl/clinic-scheduler/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-scheduler/pkg/messaging"
)

type Config struct {
	Brokers string
	GroupID string
}

// KafkaBroker publishes to topics named by the channel argument.
type KafkaBroker struct {
	brokers []string
	groupID string
	writer  *kafka.Writer
	cb      *circuitbreaker.CircuitBreaker
	logger  *zerolog.Logger

	mu      sync.Mutex
	readers []*kafka.Reader
}

// SplitBrokers parses a comma separated broker list, dropping blanks.
func SplitBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewKafkaBroker(config Config, logger *zerolog.Logger) (messaging.Broker, error) {
	brokers := SplitBrokers(config.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}

	return &KafkaBroker{
		brokers: brokers,
		groupID: config.GroupID,
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Balancer: &kafka.Hash{},
		}),
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "kafka-broker",
			MaxRequests: 5,
			Timeout:     5 * time.Second,
		}),
		logger: logger,
	}, nil
}

// newMessage builds the kafka record for message; keyed messages keep all
// events of one aggregate on one partition.
func newMessage(topic string, message interface{}) (kafka.Message, error) {
	value, err := messaging.Encode(message)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	msg := kafka.Message{Topic: topic, Value: value}
	if key := messaging.KeyOf(message); key != "" {
		msg.Key = []byte(key)
	}
	if m, ok := message.(messaging.Message); ok {
		msg.Headers = []kafka.Header{
			{Key: "event_id", Value: []byte(m.ID)},
			{Key: "event_type", Value: []byte(m.Type)},
		}
	}
	return msg, nil
}

func (b *KafkaBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	msg, err := newMessage(channel, message)
	if err != nil {
		return err
	}
	return b.cb.Execute(func() error {
		return b.writer.WriteMessages(ctx, msg)
	})
}

func (b *KafkaBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		GroupID:  b.groupID,
		Topic:    channel,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	b.mu.Lock()
	b.readers = append(b.readers, reader)
	b.mu.Unlock()

	out := make(chan []byte, 100)
	go func() {
		defer close(out)
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.logger.Warn().Err(err).Str("topic", channel).Msg("kafka read stopped")
				}
				return
			}
			select {
			case out <- msg.Value:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *KafkaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	errs := []error{b.writer.Close()}
	for _, r := range b.readers {
		errs = append(errs, r.Close())
	}
	b.readers = nil
	return errors.Join(errs...)
}
