package easyws

import "sync"

type commandKind byte

const (
	commandSend commandKind = iota + 1
	commandDisconnect
)

func (k commandKind) String() string {
	switch k {
	case commandSend:
		return "send"
	case commandDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// command is an intent queued by the handle for the network loop to execute.
type command struct {
	kind commandKind
	text string
}

func newSendCommand(text string) command {
	return command{kind: commandSend, text: text}
}

func newDisconnectCommand() command {
	return command{kind: commandDisconnect}
}

const commandQueueSize = 32

// commandChannel carries commands from the handle to the network loop.
// Multi-producer, single-consumer, FIFO per producer. The command channel
// itself is never closed; closeC signals termination so pending submitters
// fail with ErrChannelClosed instead of blocking against a gone consumer.
type commandChannel struct {
	cmds      chan command
	closeC    chan struct{}
	closeOnce sync.Once
}

func newCommandChannel() *commandChannel {
	return &commandChannel{
		cmds:   make(chan command, commandQueueSize),
		closeC: make(chan struct{}),
	}
}

// submit enqueues cmd for the loop to consume. It fails with ErrChannelClosed
// once the owning loop has terminated.
func (c *commandChannel) submit(cmd command) error {
	select {
	case <-c.closeC:
		return ErrChannelClosed
	default:
	}

	select {
	case c.cmds <- cmd:
		return nil
	case <-c.closeC:
		return ErrChannelClosed
	}
}

// commands exposes the consumer side for the loop select.
func (c *commandChannel) commands() <-chan command {
	return c.cmds
}

// close marks the channel terminated. Commands still buffered are dropped
// with the cycle. Safe to call more than once.
func (c *commandChannel) close() {
	c.closeOnce.Do(func() {
		close(c.closeC)
	})
}
