package easyws

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/pkg/errors"
)

type (
	// WebsocketTransport opens connections through the fasthttp/websocket
	// engine. It is the transport a built Client uses unless the builder is
	// given another one.
	WebsocketTransport struct {
		headers HeaderProvider
		logger  logger
	}

	// wsConnection represents an established WebSocket connection.
	// It implements the Connection interface.
	wsConnection struct {
		logger    logger
		conn      *websocket.Conn
		recv      chan<- Event
		closeC    chan struct{}
		closeOnce sync.Once
	}
)

func NewWebsocketTransport() *WebsocketTransport {
	return &WebsocketTransport{logger: noopLogger{}}
}

// WithHeaderProvider attaches extra handshake headers to every connect
// attempt this transport performs.
func (t *WebsocketTransport) WithHeaderProvider(hp HeaderProvider) *WebsocketTransport {
	t.headers = hp
	return t
}

func (t *WebsocketTransport) setLogger(l logger) {
	t.logger = l
}

func newWebsocketTransport(log logger, hp HeaderProvider) *WebsocketTransport {
	return &WebsocketTransport{logger: log, headers: hp}
}

// Open dials endpoint and starts the read pump. The returned connection
// pushes its events to recv until EventClosed.
func (t *WebsocketTransport) Open(
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

	dialer := &websocket.Dialer{HandshakeTimeout: timeout}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, endpoint, header)
	if err = handleDialError(resp, err); err != nil {
		t.logger.Errorf("connection err to %s: %s", endpoint, err)
		return nil, err
	}

	t.logger.Debugf("success opening connection to %s", endpoint)

	w := &wsConnection{
		logger: t.logger.WithField("net", "ws_connection"),
		conn:   conn,
		recv:   recv,
		closeC: make(chan struct{}),
	}

	// Override ping/pong handlers to gain control over 'control' frames, as
	// some servers rate-limit those as well. The default close handler stays
	// in place: it echoes the close frame and lets ReadMessage surface the
	// CloseError.
	conn.SetPingHandler(func(appData string) error {
		w.logger.Debugln("<= [PING]")
		w.logger.Debugln("=> [PONG]")
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	conn.SetPongHandler(func(string) error {
		w.logger.Debugln("<= [PONG]")
		return nil
	})

	go w.read()

	return w, nil
}

// Send writes one outbound text message over the WebSocket connection.
func (w *wsConnection) Send(text string) error {
	select {
	case <-w.closeC:
		return ErrConnectionClosed
	default:
	}

	deadline := time.Now().Add(time.Second)
	_ = w.conn.SetWriteDeadline(deadline)

	w.logger.Infof("=> [DATA] %s", text)

	err := w.conn.WriteMessage(websocket.TextMessage, []byte(text))
	if err == nil {
		return nil
	}

	if websocket.IsCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
	) {
		return ErrConnectionClosed
	}
	return errors.Wrap(ErrConnectionClosed, err.Error())
}

// Ping writes a keep-alive probe.
func (w *wsConnection) Ping() error {
	select {
	case <-w.closeC:
		return ErrConnectionClosed
	default:
	}

	w.logger.Debugln("=> [PING]")

	deadline := time.Now().Add(time.Second)
	err := w.conn.WriteControl(websocket.PingMessage, nil, deadline)
	if e, ok := err.(net.Error); ok && e.Temporary() {
		err = nil
	}
	if err != nil {
		return errors.Wrap(ErrConnectionClosed, err.Error())
	}
	return nil
}

// Close terminates the WebSocket connection from our side. It ensures that
// all resources related to the connection are cleaned up and that the final
// EventClosed reaches the recv channel.
func (w *wsConnection) Close() {
	select {
	case <-w.closeC:
		return
	default:
	}

	w.logger.Infoln("closing connection from our side")

	deadline := time.Now().Add(time.Second)
	_ = w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		deadline,
	)

	w.teardown(NewClosedEvent(websocket.CloseNormalClosure, ""))
}

func (w *wsConnection) read() {
	for {
		select {
		case <-w.closeC:
			return
		default:
		}

		messageType, bts, err := w.conn.ReadMessage()
		if err != nil {
			w.closeOnReadError(err)
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			w.logger.Debugln("<= [BIN]")
		default:
			w.logger.Debugf("<= [DATA] %s", string(bts))
		}

		w.deliver(NewMessageEvent(string(bts)))
	}
}

func (w *wsConnection) closeOnReadError(err error) {
	select {
	case <-w.closeC:
		// closed from our side, the read pump just drained out
		return
	default:
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) &&
		(closeErr.Code == websocket.CloseNormalClosure ||
			closeErr.Code == websocket.CloseGoingAway) {
		w.logger.Debugln("<= [CLOSE]")
		w.teardown(NewClosedEvent(closeErr.Code, closeErr.Text))
		return
	}

	w.logger.Errorf("error occurred on websocket read: %s", err)
	w.deliver(NewErrorEvent(
		errors.Wrap(ErrConnectionClosed, err.Error()).Error(),
	))

	code := websocket.CloseAbnormalClosure
	if closeErr != nil {
		code = closeErr.Code
	}
	w.teardown(NewClosedEvent(code, err.Error()))
}

// deliver pushes ev to the network loop without outliving the connection.
func (w *wsConnection) deliver(ev Event) {
	select {
	case w.recv <- ev:
	case <-w.closeC:
	}
}

// teardown closes the socket and emits the final EventClosed. It only
// executes once, subsequent calls have no effect. The network loop depends
// on the final event to finish the cycle, and Close may be called by the
// loop itself, so the emit runs on its own goroutine: it waits out a full
// backlog without stalling the closer, bounded against a consumer that is
// already gone.
func (w *wsConnection) teardown(last Event) {
	w.closeOnce.Do(func() {
		close(w.closeC)
		_ = w.conn.Close()

		go func() {
			select {
			case w.recv <- last:
			case <-time.After(closeEmitTimeout):
				w.logger.Warnf("recv backlog stuck, dropping %s", last)
			}
		}()
	})
}

func handleDialError(resp *http.Response, err error) error {
	if err == nil {
		return nil
	}

	var msg string
	if resp != nil {
		if resp.Body != nil {
			if bts, readErr := io.ReadAll(resp.Body); readErr == nil {
				msg = string(bts)
			}
			_ = resp.Body.Close()
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return errors.Wrap(ErrRateLimit, msg)
		}
	}

	return errors.Wrap(ErrCannotConnect, err.Error())
}
