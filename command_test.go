package easyws

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestCommandOrder(t *testing.T) {
	ch := newCommandChannel()

	for _, cmd := range []command{
		newSendCommand("first"),
		newSendCommand("second"),
		newDisconnectCommand(),
	} {
		if err := ch.submit(cmd); err != nil {
			t.Fatalf("Expected submit to succeed, but got %v", err)
		}
	}

	got := []command{<-ch.commands(), <-ch.commands(), <-ch.commands()}

	if got[0].text != "first" || got[1].text != "second" {
		t.Errorf("Expected sends in submission order, but got %v", got)
	}
	if got[2].kind != commandDisconnect {
		t.Errorf("Expected disconnect last, but got %s", got[2].kind)
	}
}

func TestCommandSubmitAfterClose(t *testing.T) {
	ch := newCommandChannel()
	ch.close()

	err := ch.submit(newSendCommand("late"))
	if !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Expected ErrChannelClosed, but got %v", err)
	}
}

func TestCommandCloseIsIdempotent(t *testing.T) {
	ch := newCommandChannel()
	ch.close()
	ch.close()
}

func TestCommandCloseUnblocksSubmitter(t *testing.T) {
	ch := newCommandChannel()

	// fill the buffer so the next submit has to wait for a consumer
	for i := 0; i < commandQueueSize; i++ {
		if err := ch.submit(newSendCommand("fill")); err != nil {
			t.Fatalf("Expected buffered submit to succeed, but got %v", err)
		}
	}

	errC := make(chan error, 1)
	go func() {
		errC <- ch.submit(newSendCommand("blocked"))
	}()

	time.Sleep(10 * time.Millisecond)
	ch.close()

	select {
	case err := <-errC:
		if !errors.Is(err, ErrChannelClosed) {
			t.Errorf("Expected ErrChannelClosed, but got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Expected close to unblock the pending submit")
	}
}
