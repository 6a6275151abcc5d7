package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/wellpath/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS. durable names the consumer so restarts
// resume where the previous process stopped.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetStream(conn)
	if err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeTrajectoryComputed delivers every computed-trajectory event.
// Handler errors are redelivered up to three times.
func (s *Subscriber) SubscribeTrajectoryComputed(ctx context.Context, handler func(ctx context.Context, event *domain.TrajectoryComputed) error) error {
	sub, err := s.js.Subscribe(SubjectTrajectoryComputed+">", func(msg *nats.Msg) {
		var event domain.TrajectoryComputed
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("drop malformed event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
