package easyws

import "sync"

type (
	// ConnectHandler runs after the connection reaches Connected.
	ConnectHandler func()

	// DisconnectHandler runs after a connect cycle returns to Disconnected.
	DisconnectHandler func()

	// MessageHandler receives each inbound text message.
	MessageHandler func(text string)

	// ErrorHandler receives transport failure descriptions.
	ErrorHandler func(desc string)
)

// dispatcher owns the four callback slots. Each slot holds at most one
// handler; replacing a slot is allowed at any time and takes effect for
// subsequent dispatches. An event hitting an empty slot is dropped, not an
// error. Registration and invocation are guarded separately: handlers may
// re-register callbacks from within a callback, while invocations stay
// serialized so handlers never run concurrently with each other.
type dispatcher struct {
	mu       sync.RWMutex
	invokeMu sync.Mutex

	logger logger

	onConnect    ConnectHandler
	onDisconnect DisconnectHandler
	onMessage    MessageHandler
	onError      ErrorHandler
}

func newDispatcher(logger logger) *dispatcher {
	return &dispatcher{
		logger: logger.WithField("comp", "dispatcher"),
	}
}

func (d *dispatcher) setOnConnect(fn ConnectHandler) {
	d.mu.Lock()
	d.onConnect = fn
	d.mu.Unlock()
}

func (d *dispatcher) setOnDisconnect(fn DisconnectHandler) {
	d.mu.Lock()
	d.onDisconnect = fn
	d.mu.Unlock()
}

func (d *dispatcher) setOnMessage(fn MessageHandler) {
	d.mu.Lock()
	d.onMessage = fn
	d.mu.Unlock()
}

func (d *dispatcher) setOnError(fn ErrorHandler) {
	d.mu.Lock()
	d.onError = fn
	d.mu.Unlock()
}

func (d *dispatcher) dispatchConnect() {
	d.mu.RLock()
	fn := d.onConnect
	d.mu.RUnlock()

	if fn == nil {
		d.logger.Debugln("no handler for connect event, dropping")
		return
	}

	d.invokeMu.Lock()
	defer d.invokeMu.Unlock()
	fn()
}

func (d *dispatcher) dispatchDisconnect() {
	d.mu.RLock()
	fn := d.onDisconnect
	d.mu.RUnlock()

	if fn == nil {
		d.logger.Debugln("no handler for disconnect event, dropping")
		return
	}

	d.invokeMu.Lock()
	defer d.invokeMu.Unlock()
	fn()
}

func (d *dispatcher) dispatchMessage(text string) {
	d.mu.RLock()
	fn := d.onMessage
	d.mu.RUnlock()

	if fn == nil {
		d.logger.Debugln("no handler for message event, dropping")
		return
	}

	d.invokeMu.Lock()
	defer d.invokeMu.Unlock()
	fn(text)
}

func (d *dispatcher) dispatchError(desc string) {
	d.mu.RLock()
	fn := d.onError
	d.mu.RUnlock()

	if fn == nil {
		d.logger.Debugln("no handler for error event, dropping")
		return
	}

	d.invokeMu.Lock()
	defer d.invokeMu.Unlock()
	fn(desc)
}
