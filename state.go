package easyws

import "sync/atomic"

// ConnectionState is the lifecycle phase of a connection handle.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateHandshaking
	StateConnected
)

var stateNames = [...]string{
	"disconnected",
	"connecting",
	"handshaking",
	"connected",
}

func (s ConnectionState) String() string {
	if s < StateDisconnected || s > StateConnected {
		return "unknown"
	}
	return stateNames[s]
}

type lifecycleEvent byte

const (
	eventBeginConnect lifecycleEvent = iota + 1
	eventHandshakeStarted
	eventHandshakeComplete
	eventClosed
	eventFailed
)

func (e lifecycleEvent) String() string {
	switch e {
	case eventBeginConnect:
		return "begin_connect"
	case eventHandshakeStarted:
		return "handshake_started"
	case eventHandshakeComplete:
		return "handshake_complete"
	case eventClosed:
		return "closed"
	case eventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// stateMachine tracks the lifecycle of one logical connection. State only
// advances disconnected→connecting→handshaking→connected, or regresses to
// disconnected from any non-disconnected state on eventClosed/eventFailed.
// Transitions are compare-and-swapped so racing BeginConnect callers elect a
// single winner without further locking.
type stateMachine struct {
	state atomic.Int32
}

// newStateMachine starts at StateDisconnected.
func newStateMachine() *stateMachine {
	return &stateMachine{}
}

func (m *stateMachine) current() ConnectionState {
	return ConnectionState(m.state.Load())
}

func (m *stateMachine) apply(ev lifecycleEvent) error {
	for {
		from := m.current()
		to, ok := nextState(from, ev)
		if !ok {
			return newTransitionError(from, ev)
		}
		if m.state.CompareAndSwap(int32(from), int32(to)) {
			return nil
		}
	}
}

func nextState(from ConnectionState, ev lifecycleEvent) (ConnectionState, bool) {
	switch ev {
	case eventBeginConnect:
		if from == StateDisconnected {
			return StateConnecting, true
		}
	case eventHandshakeStarted:
		if from == StateConnecting {
			return StateHandshaking, true
		}
	case eventHandshakeComplete:
		if from == StateHandshaking {
			return StateConnected, true
		}
	case eventClosed, eventFailed:
		if from != StateDisconnected {
			return StateDisconnected, true
		}
	}
	return from, false
}
