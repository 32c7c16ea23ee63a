package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/neverbeen/internal/core/domain"
)

const (
	samplesStream = "EXPLORE_SAMPLES"
	// SamplesSubjectPrefix is followed by the session ID.
	SamplesSubjectPrefix = "explore.samples."
)

// SampleSubject is the subject a session's samples are published on.
func SampleSubject(sessionID string) string {
	return SamplesSubjectPrefix + sessionID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure stream exists
	cfg := &nats.StreamConfig{
		Name:      samplesStream,
		Subjects:  []string{SamplesSubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSample publishes a generated destination on the session's subject.
func (p *Publisher) PublishSample(ctx context.Context, event *domain.SampleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SampleSubject(event.SessionID), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect opens a plain NATS connection that keeps reconnecting.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
