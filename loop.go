package easyws

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const eventQueueSize = 32

// networkLoop owns the transport connection for exactly one connect cycle:
// from a winning Connect call until the handle returns to Disconnected. The
// loop is the sole consumer of the command channel and the sole writer of
// state transitions past BeginConnect, so every cycle that reaches Connected
// dispatches Disconnected exactly once no matter whether the transport or a
// command closed it first.
type networkLoop struct {
	cfg        Config
	logger     logger
	transport  Transport
	machine    *stateMachine
	dispatcher *dispatcher

	queue *commandChannel
	recv  chan Event
	done  chan struct{}

	// prev is the done channel of the cycle this one replaced, nil for the
	// first cycle. Waiting on it keeps callbacks from adjacent cycles in
	// order: the new cycle cannot dispatch Connected while the old one is
	// still delivering its final Disconnected.
	prev <-chan struct{}
}

func newNetworkLoop(
	cfg Config,
	log logger,
	transport Transport,
	machine *stateMachine,
	dispatcher *dispatcher,
) *networkLoop {
	return &networkLoop{
		cfg:        cfg,
		logger:     log.WithField("net", "loop").WithField("cycle", uuid.NewString()),
		transport:  transport,
		machine:    machine,
		dispatcher: dispatcher,
		queue:      newCommandChannel(),
		recv:       make(chan Event, eventQueueSize),
		done:       make(chan struct{}),
	}
}

// submit hands a command to this cycle's queue.
func (l *networkLoop) submit(cmd command) error {
	return l.queue.submit(cmd)
}

// run drives one connect cycle. It must be started on its own goroutine right
// after the state machine accepted eventBeginConnect. ctx bounds the dial
// only; once connected, the cycle ends through a Disconnect command or a
// transport-initiated close.
func (l *networkLoop) run(ctx context.Context) {
	defer close(l.done)

	if l.prev != nil {
		<-l.prev
	}

	if err := l.machine.apply(eventHandshakeStarted); err != nil {
		l.logger.Errorf("cannot start handshake: %s", err)
		l.fail(err)
		return
	}

	conn, err := l.transport.Open(ctx, l.cfg.Endpoint, l.cfg.Timeout, l.recv)
	if err != nil {
		l.logger.Errorf("cannot open connection to %s: %s", l.cfg.Endpoint, err)
		l.fail(err)
		return
	}

	if err := l.machine.apply(eventHandshakeComplete); err != nil {
		// unreachable while the loop owns post-BeginConnect transitions; do
		// not leak the fresh connection if it ever trips
		l.logger.Errorf("cannot complete handshake: %s", err)
		conn.Close()
		l.drainUntilClosed()
		l.fail(err)
		return
	}

	l.logger.Infof("connected to %s", l.cfg.Endpoint)
	l.dispatcher.dispatchConnect()

	l.steady(conn)

	l.queue.close()
	if err := l.machine.apply(eventClosed); err != nil {
		l.logger.Errorf("cannot transition to disconnected: %s", err)
	}
	l.logger.Infoln("disconnected")
	l.dispatcher.dispatchDisconnect()
}

// fail tears a cycle down before it ever reached Connected: the state goes
// back to Disconnected and the failure is surfaced through the on-error
// callback alone.
func (l *networkLoop) fail(err error) {
	l.queue.close()
	if applyErr := l.machine.apply(eventFailed); applyErr != nil {
		l.logger.Errorf("cannot transition to disconnected: %s", applyErr)
	}
	l.dispatcher.dispatchError(err.Error())
}

// steady reacts to transport events and queued commands, in arrival order,
// until the connection is gone.
func (l *networkLoop) steady(conn Connection) {
	var tick <-chan time.Time
	if l.cfg.Interval > 0 {
		ticker := time.NewTicker(l.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case ev := <-l.recv:
			switch ev.Type() {
			case EventMessage:
				l.dispatcher.dispatchMessage(ev.Text())
			case EventError:
				l.dispatcher.dispatchError(ev.Text())
			case EventClosed:
				l.logger.Debugf("connection closed: %s", ev)
				return
			}

		case cmd := <-l.queue.commands():
			switch cmd.kind {
			case commandSend:
				if err := conn.Send(cmd.text); err != nil {
					l.logger.Errorf("cannot send message: %s", err)
					l.dispatcher.dispatchError(err.Error())
				}
			case commandDisconnect:
				l.logger.Debugln("disconnect requested")
				conn.Close()
				l.drainUntilClosed()
				return
			}

		case <-tick:
			if err := conn.Ping(); err != nil {
				l.logger.Errorf("cannot ping: %s", err)
				l.dispatcher.dispatchError(err.Error())
			}
		}
	}
}

// drainUntilClosed keeps forwarding events after a close was requested until
// the transport confirms closure, bounded so a broken transport cannot hang
// the cycle.
func (l *networkLoop) drainUntilClosed() {
	timeout := time.NewTimer(l.cfg.Timeout)
	defer timeout.Stop()

	for {
		select {
		case ev := <-l.recv:
			switch ev.Type() {
			case EventMessage:
				l.dispatcher.dispatchMessage(ev.Text())
			case EventError:
				l.dispatcher.dispatchError(ev.Text())
			case EventClosed:
				return
			}
		case <-timeout.C:
			l.logger.Warnln("transport did not confirm closure in time")
			return
		}
	}
}
