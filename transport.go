package easyws

import (
	"context"
	"net/http"
	"time"
)

// closeEmitTimeout bounds how long an adapter waits for the network loop to
// accept the final EventClosed before giving up on it.
const closeEmitTimeout = 5 * time.Second

type (
	// HeaderProvider supplies extra HTTP headers for the opening handshake.
	// It is consulted once per connect attempt.
	HeaderProvider func(ctx context.Context) (http.Header, error)

	// Connection is an established transport-level connection. Send, Ping and
	// Close belong to the network loop that owns the connection; they must not
	// be called concurrently with each other.
	Connection interface {
		// Send writes one outbound text message.
		Send(text string) error

		// Ping writes a keep-alive probe.
		Ping() error

		// Close tears the connection down. Safe to call more than once.
		Close()
	}

	// Transport opens transport-level connections. Implementations perform
	// the protocol handshake and push subsequent events to recv; EventClosed
	// is emitted exactly once per successful Open and is always the last
	// event delivered.
	Transport interface {
		Open(
			ctx context.Context,
			endpoint string,
			timeout time.Duration,
			recv chan<- Event,
		) (Connection, error)
	}

	// loggerSetter lets the builder hand its logger to transports that accept
	// one.
	loggerSetter interface {
		setLogger(logger)
	}
)

func resolveHeaders(ctx context.Context, provider HeaderProvider) (http.Header, error) {
	if provider == nil {
		return nil, nil
	}
	return provider(ctx)
}
