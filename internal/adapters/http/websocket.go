package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/wellpath/internal/adapters/nats"
	"github.com/samirrijal/wellpath/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsMessage is sent by clients to change their feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "trajectories" | "imports"
	ID      string `json:"id"`      // trajectory or import ID filter, "" = all
}

// wsSubject maps a channel and optional ID to the NATS subject relayed.
func wsSubject(channel, id string) (string, bool) {
	var prefix string
	switch channel {
	case "", "trajectories":
		prefix = natsadapter.SubjectTrajectoryComputed
	case "imports":
		prefix = natsadapter.SubjectImportFailed
	default:
		return "", false
	}
	if id == "" {
		return prefix + ">", true
	}
	return prefix + id, true
}

// WebSocketHandler relays import events to connected clients. Every client
// starts on all trajectory events and can narrow or widen with
// {"action":"subscribe","channel":"imports","id":"..."}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		logger := slog.With("remote", c.RemoteAddr().String())
		logger.Info("ws client connected")

		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "event stream unavailable"})
			return
		}

		var mu sync.Mutex
		write := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) { _ = write(json.RawMessage(msg.Data)) }

		subs := make(map[string]*nats.Subscription)
		defer func() {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			logger.Info("ws client disconnected")
		}()

		initial, _ := wsSubject("", "")
		sub, err := nc.Subscribe(initial, relay)
		if err != nil {
			logger.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[initial] = sub

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
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

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = write(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, ok := wsSubject(m.Channel, m.ID)
			if !ok {
				_ = write(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = write(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = write(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = write(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				s, exists := subs[subject]
				if !exists {
					_ = write(map[string]string{"error": "not subscribed to " + subject})
					continue
				}
				_ = s.Unsubscribe()
				delete(subs, subject)
				_ = write(map[string]string{"status": "unsubscribed", "subject": subject})

			default:
				_ = write(map[string]string{"error": "unknown action: " + m.Action})
			}
		}
	}
}
