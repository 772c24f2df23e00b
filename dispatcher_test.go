package easyws

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatchWithoutHandlers(t *testing.T) {
	d := newDispatcher(noopLogger{})

	// nothing registered: events are dropped silently, not an error
	d.dispatchConnect()
	d.dispatchDisconnect()
	d.dispatchMessage("hello")
	d.dispatchError("boom")
}

func TestDispatchHandlerReplacement(t *testing.T) {
	d := newDispatcher(noopLogger{})

	var got []string
	d.setOnMessage(func(text string) {
		got = append(got, "old:"+text)
	})
	d.dispatchMessage("one")

	d.setOnMessage(func(text string) {
		got = append(got, "new:"+text)
	})
	d.dispatchMessage("two")

	if len(got) != 2 || got[0] != "old:one" || got[1] != "new:two" {
		t.Errorf("Expected replacement to take effect for later dispatches, but got %v", got)
	}
}

func TestDispatchUnregister(t *testing.T) {
	d := newDispatcher(noopLogger{})

	var calls int
	d.setOnError(func(string) { calls++ })
	d.dispatchError("first")

	d.setOnError(nil)
	d.dispatchError("second")

	if calls != 1 {
		t.Errorf("Expected 1 call after unregistering, but got %d", calls)
	}
}

func TestDispatchRegisterInsideHandler(t *testing.T) {
	d := newDispatcher(noopLogger{})

	var reentry bool
	d.setOnMessage(func(string) {
		// re-registering from within a callback must not deadlock
		d.setOnMessage(func(string) { reentry = true })
	})

	d.dispatchMessage("first")
	d.dispatchMessage("second")

	if !reentry {
		t.Error("Expected the handler registered inside a callback to run")
	}
}

func TestDispatchNeverConcurrent(t *testing.T) {
	d := newDispatcher(noopLogger{})

	var active atomic.Int32
	var overlapped atomic.Bool

	d.setOnMessage(func(string) {
		if active.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.dispatchMessage("x")
		}()
	}
	wg.Wait()

	if overlapped.Load() {
		t.Error("Expected handler invocations to be serialized")
	}
}
