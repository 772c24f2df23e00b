package easyws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/pkg/errors"
)

type (
	// CoderTransport opens connections through the coder/websocket engine.
	// Functionally interchangeable with WebsocketTransport; pick it when the
	// surrounding program already depends on coder/websocket.
	CoderTransport struct {
		headers HeaderProvider
		logger  logger
	}

	coderConnection struct {
		logger     logger
		conn       *websocket.Conn
		recv       chan<- Event
		rootCtx    context.Context
		rootCancel context.CancelFunc
		closeC     chan struct{}
		closeOnce  sync.Once
	}
)

func NewCoderTransport() *CoderTransport {
	return &CoderTransport{logger: noopLogger{}}
}

// WithHeaderProvider attaches extra handshake headers to every connect
// attempt this transport performs.
func (t *CoderTransport) WithHeaderProvider(hp HeaderProvider) *CoderTransport {
	t.headers = hp
	return t
}

func (t *CoderTransport) setLogger(l logger) {
	t.logger = l
}

// Open dials endpoint and starts the read pump. The returned connection
// pushes its events to recv until EventClosed.
func (t *CoderTransport) Open(
	ctx context.Context,
	endpoint string,
	timeout time.Duration,
	recv chan<- Event,
) (Connection, error) {
	header, err := resolveHeaders(ctx, t.headers)
	if err != nil {
		t.logger.Errorf("cannot resolve handshake headers: %s", err)
		return nil, errors.Wrap(ErrCannotConnect, err.Error())
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, endpoint, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		t.logger.Errorf("connection err to %s: %s", endpoint, err)
		return nil, errors.Wrap(ErrCannotConnect, err.Error())
	}

	t.logger.Debugf("success opening connection to %s", endpoint)

	// The connection outlives the dial context; reads run against a root
	// context cancelled on teardown.
	rootCtx, rootCancel := context.WithCancel(context.Background())

	c := &coderConnection{
		logger:     t.logger.WithField("net", "coder_connection"),
		conn:       conn,
		recv:       recv,
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
		closeC:     make(chan struct{}),
	}

	go c.read()

	return c, nil
}

// Send writes one outbound text message over the WebSocket connection.
func (c *coderConnection) Send(text string) error {
	select {
	case <-c.closeC:
		return ErrConnectionClosed
	default:
	}

	writeCtx, cancel := context.WithTimeout(c.rootCtx, time.Second)
	defer cancel()

	c.logger.Infof("=> [DATA] %s", text)

	if err := c.conn.Write(writeCtx, websocket.MessageText, []byte(text)); err != nil {
		return errors.Wrap(ErrConnectionClosed, err.Error())
	}
	return nil
}

// Ping writes a keep-alive probe and waits for the pong.
func (c *coderConnection) Ping() error {
	select {
	case <-c.closeC:
		return ErrConnectionClosed
	default:
	}

	c.logger.Debugln("=> [PING]")

	pingCtx, cancel := context.WithTimeout(c.rootCtx, time.Second)
	defer cancel()

	if err := c.conn.Ping(pingCtx); err != nil {
		return errors.Wrap(ErrConnectionClosed, err.Error())
	}
	return nil
}

// Close terminates the WebSocket connection from our side, performing the
// close handshake with the peer.
func (c *coderConnection) Close() {
	select {
	case <-c.closeC:
		return
	default:
	}

	c.logger.Infoln("closing connection from our side")
	_ = c.conn.Close(websocket.StatusNormalClosure, "")

	c.teardown(NewClosedEvent(int(websocket.StatusNormalClosure), ""))
}

func (c *coderConnection) read() {
	for {
		messageType, bts, err := c.conn.Read(c.rootCtx)
		if err != nil {
			c.closeOnReadError(err)
			return
		}

		switch messageType {
		case websocket.MessageBinary:
			c.logger.Debugln("<= [BIN]")
		default:
			c.logger.Debugf("<= [DATA] %s", string(bts))
		}

		c.deliver(NewMessageEvent(string(bts)))
	}
}

func (c *coderConnection) closeOnReadError(err error) {
	select {
	case <-c.closeC:
		// closed from our side, the read pump just drained out
		return
	default:
	}

	status := websocket.CloseStatus(err)
	switch {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		c.logger.Debugln("<= [CLOSE]")
		c.teardown(NewClosedEvent(int(status), ""))
	case status != -1:
		c.logger.Errorf("error occurred on websocket read: %s", err)
		c.deliver(NewErrorEvent(
			errors.Wrap(ErrConnectionClosed, err.Error()).Error(),
		))
		c.teardown(NewClosedEvent(int(status), err.Error()))
	default:
		c.logger.Errorf("error occurred on websocket read: %s", err)
		c.deliver(NewErrorEvent(
			errors.Wrap(ErrConnectionClosed, err.Error()).Error(),
		))
		c.teardown(NewClosedEvent(int(websocket.StatusAbnormalClosure), err.Error()))
	}
}

// deliver pushes ev to the network loop without outliving the connection.
func (c *coderConnection) deliver(ev Event) {
	select {
	case c.recv <- ev:
	case <-c.closeC:
	}
}

// teardown cancels the read pump and emits the final EventClosed. It only
// executes once, subsequent calls have no effect. The network loop depends
// on the final event to finish the cycle, and Close may be called by the
// loop itself, so the emit runs on its own goroutine: it waits out a full
// backlog without stalling the closer, bounded against a consumer that is
// already gone.
func (c *coderConnection) teardown(last Event) {
	c.closeOnce.Do(func() {
		close(c.closeC)
		c.rootCancel()
		_ = c.conn.CloseNow()

		go func() {
			select {
			case c.recv <- last:
			case <-time.After(closeEmitTimeout):
				c.logger.Warnf("recv backlog stuck, dropping %s", last)
			}
		}()
	})
}
