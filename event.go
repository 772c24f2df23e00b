package easyws

import "fmt"

// EventType identifies the kind of event a transport pushes to the network loop.
type EventType byte

const (
	EventMessage EventType = iota + 1
	EventError
	EventClosed
)

func (t EventType) Is(other EventType) bool {
	return t == other
}

func (t EventType) IsMessage() bool {
	return t.Is(EventMessage)
}

func (t EventType) IsError() bool {
	return t.Is(EventError)
}

func (t EventType) IsClosed() bool {
	return t.Is(EventClosed)
}

func (t EventType) String() string {
	switch t {
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is a single occurrence surfaced by a transport connection: an inbound
// text message, a transport-level error description, or the close notification.
// EventClosed is always the last event a connection delivers.
type Event struct {
	EventType EventType
	EventText string
	Code      int
}

func (e Event) Type() EventType {
	return e.EventType
}

func (e Event) Text() string {
	return e.EventText
}

func (e Event) String() string {
	if e.EventType.IsClosed() {
		return fmt.Sprintf("Event{type=%s,code=%d,text=%s}",
			e.EventType, e.Code, e.EventText)
	}
	return fmt.Sprintf("Event{type=%s,text=%s}",
		e.EventType, e.EventText)
}

func NewEvent(t EventType, text string) Event {
	return Event{EventType: t, EventText: text}
}

func NewMessageEvent(text string) Event {
	return NewEvent(EventMessage, text)
}

func NewErrorEvent(desc string) Event {
	return NewEvent(EventError, desc)
}

func NewClosedEvent(code int, reason string) Event {
	return Event{EventType: EventClosed, EventText: reason, Code: code}
}
