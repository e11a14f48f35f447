package sse

import (
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Errorf("expected 1 client, got %d", n)
	}

	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("expected 0 clients after unsubscribe, got %d", n)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestPublishReachesAllClients(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(Event{Type: "ping", Data: map[string]string{"x": "1"}})

	for _, ch := range []chan []byte{a, c} {
		msg := recv(t, ch)
		if !strings.Contains(msg, "event: ping") || !strings.Contains(msg, `"x":"1"`) {
			t.Errorf("unexpected message: %q", msg)
		}
	}
}

func TestNoteEventFormats(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	ch := b.Subscribe()

	b.PublishNoteEvent(KindCreated, "note-1")
	msg := recv(t, ch)
	if !strings.Contains(msg, "event: note.created") || !strings.Contains(msg, `"id":"note-1"`) {
		t.Errorf("unexpected created event: %q", msg)
	}
	// First note event also triggers graph.updated.
	if msg := recv(t, ch); !strings.Contains(msg, "event: graph.updated") {
		t.Errorf("expected graph.updated, got %q", msg)
	}

	b.PublishNoteEvent(KindUpdated, "note-1")
	if msg := recv(t, ch); !strings.Contains(msg, "event: note.updated") {
		t.Errorf("unexpected updated event: %q", msg)
	}

	b.PublishNoteEvent(KindDeleted, "note-1")
	if msg := recv(t, ch); !strings.Contains(msg, "event: note.deleted") {
		t.Errorf("unexpected deleted event: %q", msg)
	}
}

func TestGraphEventThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()

	b.PublishNoteEvent(KindCreated, "a")
	recv(t, ch) // note.created
	recv(t, ch) // graph.updated (first is always sent)

	b.PublishNoteEvent(KindUpdated, "a")
	recv(t, ch) // note.updated

	// No second graph.updated within the throttle window.
	select {
	case msg := <-ch:
		if strings.Contains(string(msg), "graph.updated") {
			t.Errorf("graph.updated should be throttled, got %q", msg)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCloseShutsDownClients(t *testing.T) {
	b := NewBroker(time.Minute)
	ch := b.Subscribe()

	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel should close on broker shutdown")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("expected 0 clients after close, got %d", n)
	}
	// Publishing after close must not panic or block.
	b.Publish(Event{Type: "ping"})
	b.PublishNoteEvent(KindCreated, "x")
}
