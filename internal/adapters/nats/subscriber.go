package natsadapter

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Subscriber relays live sample events to in-process listeners such as
// WebSocket clients. It uses plain subscriptions: a listener only sees
// samples published while it is connected.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber wraps an existing connection.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// SubscribeSamples calls fn with the raw JSON of every sample event for
// sessionID. An empty sessionID listens to all sessions.
func (s *Subscriber) SubscribeSamples(sessionID string, fn func(data []byte)) (func(), error) {
	subject := SamplesSubjectPrefix + ">"
	if sessionID != "" {
		subject = SampleSubject(sessionID)
	}
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Connected reports whether the connection is currently up.
func (s *Subscriber) Connected() bool {
	return s.conn.IsConnected()
}
