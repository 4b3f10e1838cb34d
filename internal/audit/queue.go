package audit

import (
	"context"
	"time"
)

// Publisher is the minimal fan-out surface Recorder pushes onto,
// narrowed from infrastructure/messaging's Queue interface to the
// fire-and-forget publish call run-history events actually need — no
// consumer groups or acks, since nothing in this engine reads the events
// back.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// NoopPublisher discards every publish, matching messaging.NoopQueue's
// role as the zero-configuration default.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, []byte) error { return nil }

// ChannelPublisher fans events out over an in-process channel, useful for
// a CLI run that wants to print state transitions as they happen without
// standing up a broker. Publish drops the event if the channel is full
// rather than blocking the scheduler.
type ChannelPublisher struct {
	ch chan PublishedEvent
}

// PublishedEvent is what ChannelPublisher delivers to its subscriber.
type PublishedEvent struct {
	Topic     string
	Payload   []byte
	Published time.Time
}

// NewChannelPublisher returns a ChannelPublisher with the given buffer
// size; Events() drains it.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan PublishedEvent, buffer)}
}

func (p *ChannelPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	select {
	case p.ch <- PublishedEvent{Topic: topic, Payload: payload, Published: time.Now()}:
	default:
	}
	return nil
}

// Events returns the channel subscribers read published events from.
func (p *ChannelPublisher) Events() <-chan PublishedEvent { return p.ch }
