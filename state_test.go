package easyws

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

func TestStateHappyPath(t *testing.T) {
	m := newStateMachine()

	steps := []struct {
		event lifecycleEvent
		want  ConnectionState
	}{
		{eventBeginConnect, StateConnecting},
		{eventHandshakeStarted, StateHandshaking},
		{eventHandshakeComplete, StateConnected},
		{eventClosed, StateDisconnected},
	}

	for _, step := range steps {
		if err := m.apply(step.event); err != nil {
			t.Fatalf("Expected %s to be accepted, but got %v", step.event, err)
		}
		if got := m.current(); got != step.want {
			t.Errorf("Expected state %s after %s, but got %s", step.want, step.event, got)
		}
	}
}

func TestStateFailedRegressions(t *testing.T) {
	for _, from := range []ConnectionState{StateConnecting, StateHandshaking, StateConnected} {
		m := newStateMachine()
		m.state.Store(int32(from))

		if err := m.apply(eventFailed); err != nil {
			t.Errorf("Expected failed to be accepted from %s, but got %v", from, err)
		}
		if got := m.current(); got != StateDisconnected {
			t.Errorf("Expected state disconnected after failed, but got %s", got)
		}
	}
}

func TestStateInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  ConnectionState
		event lifecycleEvent
	}{
		{"begin connect while connecting", StateConnecting, eventBeginConnect},
		{"begin connect while connected", StateConnected, eventBeginConnect},
		{"handshake start while disconnected", StateDisconnected, eventHandshakeStarted},
		{"handshake start while connected", StateConnected, eventHandshakeStarted},
		{"handshake complete while connecting", StateConnecting, eventHandshakeComplete},
		{"handshake complete while disconnected", StateDisconnected, eventHandshakeComplete},
		{"closed while disconnected", StateDisconnected, eventClosed},
		{"failed while disconnected", StateDisconnected, eventFailed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newStateMachine()
			m.state.Store(int32(test.from))

			err := m.apply(test.event)
			if err == nil {
				t.Fatalf("Expected %s from %s to be rejected", test.event, test.from)
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Expected ErrInvalidTransition, but got %v", err)
			}
			if got := m.current(); got != test.from {
				t.Errorf("Expected state to stay %s, but got %s", test.from, got)
			}
		})
	}
}

func TestStateConcurrentBeginConnect(t *testing.T) {
	m := newStateMachine()

	var wg sync.WaitGroup
	var winners atomic.Int32

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.apply(eventBeginConnect); err == nil {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Errorf("Expected exactly 1 winner, but got %d", got)
	}
	if got := m.current(); got != StateConnecting {
		t.Errorf("Expected state connecting, but got %s", got)
	}
}
