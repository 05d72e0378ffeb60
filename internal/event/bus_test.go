package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/Rhishavhere/codeblink/internal/logging"
)

func TestBus_PublishTerminalClosed(t *testing.T) {
	bus := NewBus()

	var got TerminalClosedEvent
	bus.Subscribe(TypeTerminalClosed, func(e Event) {
		got = e.(TerminalClosedEvent)
	})

	bus.Publish(NewTerminalClosedEvent("launch-1", "/w/demoProcessed.py", 2, "", "Terminal closed (exit code 2)"))

	if got.LaunchID != "launch-1" || got.ExitCode != 2 {
		t.Fatalf("handler received %+v", got)
	}
	if got.Timestamp().IsZero() {
		t.Error("Timestamp() should be set")
	}
}

func TestBus_OnlyMatchingTypeIsDelivered(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TypeFileSaved, func(Event) {
		t.Error("file.saved handler called for another event type")
	})
	bus.Publish(NewFileOpenedEvent("/w/a.nl"))
}

func TestBus_SpecificHandlersRunBeforeWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "all:"+e.EventType()) })
	bus.Subscribe(TypeLogEntry, func(e Event) { order = append(order, "one:"+e.EventType()) })
	bus.Subscribe(TypeLogEntry, func(e Event) { order = append(order, "two:"+e.EventType()) })

	bus.Publish(NewLogEntryEvent("info", "hello"))

	want := []string{"one:log.entry", "two:log.entry", "all:log.entry"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := map[string]int{}
	first := bus.Subscribe(TypeFileSaved, func(Event) { calls["first"]++ })
	bus.Subscribe(TypeFileSaved, func(Event) { calls["second"]++ })

	if !bus.Unsubscribe(first) {
		t.Fatal("Unsubscribe() = false for an existing subscription")
	}
	if bus.Unsubscribe(first) {
		t.Error("second Unsubscribe() of the same ID should return false")
	}

	bus.Publish(NewFileSavedEvent("/w/a.nl"))
	if calls["first"] != 0 || calls["second"] != 1 {
		t.Errorf("calls = %v", calls)
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()

	var id string
	calls := 0
	id = bus.Subscribe(TypeFileSaved, func(Event) {
		calls++
		bus.Unsubscribe(id)
	})
	bus.Subscribe(TypeFileSaved, func(Event) { calls++ })

	bus.Publish(NewFileSavedEvent("/w/a.nl"))
	bus.Publish(NewFileSavedEvent("/w/a.nl"))

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestBus_HandlerPanicIsLogged(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(WithLogger(logging.NewWriterLogger(&buf, "debug")))

	calls := 0
	bus.Subscribe(TypeTerminalClosed, func(Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe(TypeTerminalClosed, func(Event) { calls++ })

	bus.Publish(NewTerminalClosedEvent("l", "/p", 0, "", ""))

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("panic was not logged: %s", buf.String())
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TypeFileOpened, func(Event) {})
	bus.SubscribeAll(func(Event) {})

	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear", bus.SubscriptionCount())
	}
}

func TestBus_Concurrent(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TypeLogEntry, func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(NewLogEntryEvent("info", "x"))
		})
		wg.Go(func() {
			id := bus.Subscribe(TypeFileSaved, func(Event) {})
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("calls = %d, want 100", calls)
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus()
	seen := make(map[string]bool)
	for range 1000 {
		id := bus.Subscribe(TypeLogEntry, func(Event) {})
		if seen[id] {
			t.Fatalf("duplicate subscription ID %s", id)
		}
		seen[id] = true
	}
}

func TestSpawnFailedEvent(t *testing.T) {
	e := NewTerminalSpawnFailedEvent("l", "/p", "spawn_failure", "xterm not found")
	if e.EventType() != TypeTerminalSpawnFailed || e.Kind != "spawn_failure" {
		t.Errorf("unexpected event %+v", e)
	}
	g := NewScriptGeneratedEvent("demo.nl", "/w/interpreted_files/demoProcessed.py", 12)
	if g.EventType() != TypeScriptGenerated || g.Bytes != 12 {
		t.Errorf("unexpected event %+v", g)
	}
}
