package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/neverbeen/internal/core/ports"
	"github.com/samirrijal/neverbeen/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to sample feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Session string `json:"session"` // session id filter (optional, "" = all sessions)
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// published sample events to the client, for live map markers.
// Connect with ?session=<id> to follow one session from the start, or send
// {"action":"subscribe","session":"<id>"}. An empty session means all sessions.
func WebSocketHandler(feed ports.SampleFeed) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]func()) // session -> unsubscribe

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(data []byte) {
			_ = writeJSON(json.RawMessage(data))
		}

		if feed == nil {
			_ = writeJSON(map[string]string{"error": "live feed not available"})
			return
		}

		initial := c.Query("session")
		unsub, err := feed.SubscribeSamples(initial, relay)
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[initial] = unsub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for subscribe/unsubscribe
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[m.Session]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "session": m.Session})
					continue
				}
				u, err := feed.SubscribeSamples(m.Session, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[m.Session] = u
				_ = writeJSON(map[string]string{"status": "subscribed", "session": m.Session})

			case "unsubscribe":
				if u, exists := subs[m.Session]; exists {
					u()
					delete(subs, m.Session)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "session": m.Session})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Session})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, u := range subs {
			u()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
