package easyws

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Client is a handle over one logical WebSocket connection. Its operations
// never block: connect spawns a background network loop, disconnect and send
// queue commands for it, and outcomes come back through the four callbacks.
// All methods are safe for concurrent use.
type Client struct {
	cfg        Config
	logger     logger
	transport  Transport
	machine    *stateMachine
	dispatcher *dispatcher

	mu   sync.Mutex
	loop *networkLoop
}

func newClient(cfg Config, log logger, transport Transport) *Client {
	return &Client{
		cfg:        cfg,
		logger:     log,
		transport:  transport,
		machine:    newStateMachine(),
		dispatcher: newDispatcher(log),
	}
}

// Connect starts a new connect cycle. It fails with ErrAlreadyConnected
// unless the handle is Disconnected; concurrent calls elect a single winner.
// It returns before the connection is up: completion is signaled through the
// on-connect callback, failure through on-error. ctx bounds the dial only,
// not the connection's lifetime.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.machine.apply(eventBeginConnect); err != nil {
		return errors.Wrap(ErrAlreadyConnected, err.Error())
	}

	loop := newNetworkLoop(c.cfg, c.logger, c.transport, c.machine, c.dispatcher)

	c.mu.Lock()
	if prev := c.loop; prev != nil {
		loop.prev = prev.done
	}
	c.loop = loop
	c.mu.Unlock()

	go loop.run(ctx)

	return nil
}

// Disconnect asks the current cycle to shut the connection down. It fails
// with ErrNotConnected if the handle is Disconnected; otherwise it returns
// immediately and the on-disconnect callback signals completion.
func (c *Client) Disconnect() error {
	if c.machine.current() == StateDisconnected {
		return ErrNotConnected
	}

	loop := c.currentLoop()
	if loop == nil {
		return ErrNotConnected
	}

	if err := loop.submit(newDisconnectCommand()); err != nil {
		// the cycle ended while we were asking
		return errors.Wrap(ErrNotConnected, err.Error())
	}
	return nil
}

// Send queues one outbound text message. It fails with ErrNotConnected
// unless the handle is Connected.
func (c *Client) Send(text string) error {
	if c.machine.current() != StateConnected {
		return ErrNotConnected
	}

	loop := c.currentLoop()
	if loop == nil {
		return ErrNotConnected
	}

	if err := loop.submit(newSendCommand(text)); err != nil {
		return errors.Wrap(ErrNotConnected, err.Error())
	}
	return nil
}

// State reports the lifecycle phase. It trails the loop's view: a cycle that
// just ended may still read as Connected for an instant.
func (c *Client) State() ConnectionState {
	return c.machine.current()
}

// OnConnect replaces the connected callback. Takes effect for subsequent
// dispatches.
func (c *Client) OnConnect(fn ConnectHandler) {
	c.dispatcher.setOnConnect(fn)
}

// OnDisconnect replaces the disconnected callback. Takes effect for
// subsequent dispatches.
func (c *Client) OnDisconnect(fn DisconnectHandler) {
	c.dispatcher.setOnDisconnect(fn)
}

// OnMessage replaces the inbound message callback. Takes effect for
// subsequent dispatches.
func (c *Client) OnMessage(fn MessageHandler) {
	c.dispatcher.setOnMessage(fn)
}

// OnError replaces the error callback. Takes effect for subsequent
// dispatches.
func (c *Client) OnError(fn ErrorHandler) {
	c.dispatcher.setOnError(fn)
}

// Close releases the handle: it disconnects if a cycle is active and waits,
// bounded by the configured timeout, for the loop to stop. The handle owns
// its background loop and never leaves one running detached. Must not be
// called from inside a callback.
func (c *Client) Close() {
	loop := c.currentLoop()
	if loop == nil {
		return
	}

	_ = c.Disconnect()

	select {
	case <-loop.done:
	case <-time.After(c.cfg.Timeout):
		c.logger.Warnln("network loop did not stop in time")
	}
}

func (c *Client) currentLoop() *networkLoop {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop
}
