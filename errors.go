package easyws

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotConnected      = errors.New("websocket client not connected")
	ErrAlreadyConnected  = errors.New("websocket client already connected")
	ErrChannelClosed     = errors.New("command channel has been closed")
	ErrConnectionClosed  = errors.New("connection has been closed")
	ErrCannotConnect     = errors.New("connection cannot be established")
	ErrRateLimit         = errors.New("rate limit exceeded")
	ErrInvalidEndpoint   = errors.New("invalid endpoint")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidTransition = errors.New("invalid state transition")
)

type TransitionError struct {
	from  ConnectionState
	event lifecycleEvent
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot apply %s while %s", ErrInvalidTransition, e.event, e.from)
}

func (e TransitionError) Unwrap() error { return ErrInvalidTransition }

func newTransitionError(from ConnectionState, ev lifecycleEvent) TransitionError {
	return TransitionError{from: from, event: ev}
}
