package easyws

import (
	"context"
	"sync"
	"time"
)

// noopTransport establishes no real connection. Its connections swallow
// writes and stay silent until closed, when the single mandatory EventClosed
// is emitted. Enough to exercise the network loop end to end.
type noopTransport struct{}

type noopConnection struct {
	recv      chan<- Event
	closeOnce sync.Once
}

func NewNoopTransport() Transport {
	return noopTransport{}
}

func (noopTransport) Open(
	_ context.Context,
	_ string,
	_ time.Duration,
	recv chan<- Event,
) (Connection, error) {
	return &noopConnection{recv: recv}, nil
}

func (n *noopConnection) Send(string) error { return nil }

func (n *noopConnection) Ping() error { return nil }

func (n *noopConnection) Close() {
	n.closeOnce.Do(func() {
		n.recv <- NewClosedEvent(1000, "")
	})
}
