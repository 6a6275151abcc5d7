package natsadapter

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects carried on the WELLPATH_EVENTS stream.
const (
	SubjectTrajectoryComputed = "wellpath.trajectory.computed."
	SubjectImportFailed       = "wellpath.import.failed."
	SubjectAll                = "wellpath.>"
)

const streamName = "WELLPATH_EVENTS"

func connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("wellpath"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// jetStream opens a JetStream context on conn. conn is closed when that fails.
func jetStream(conn *nats.Conn, opts ...nats.JSOpt) (nats.JetStreamContext, error) {
	js, err := conn.JetStream(opts...)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return js, nil
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return connect(url)
}
