package messaging

import (
	"context"
	"encoding/json"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Keyed messages choose their partition key on brokers that have one.
type Keyed interface {
	MessageKey() string
}

// Message is the envelope the outbox publishes.
type Message struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Key     string          `json:"key,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

func (m Message) MessageKey() string {
	return m.Key
}

// KeyOf returns message's partition key, or "" when it has none.
func KeyOf(message interface{}) string {
	if k, ok := message.(Keyed); ok {
		return k.MessageKey()
	}
	return ""
}

// Encode marshals message unless it is already raw bytes.
func Encode(message interface{}) ([]byte, error) {
	switch v := message.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}
	return json.Marshal(message)
}

// Nop drops everything published to it.
type Nop struct{}

func (Nop) Publish(context.Context, string, interface{}) error { return nil }

func (Nop) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (Nop) Close() error { return nil }
