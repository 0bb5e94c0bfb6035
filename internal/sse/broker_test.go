package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: EventPanelState, Data: map[string]string{"state": "visible"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: panel.state") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"state":"visible"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestPublishEdit_Throttle(t *testing.T) {
	b := NewBroker(200 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishEdit(map[string]string{"content": "a"})
	b.PublishEdit(map[string]string{"content": "ab"})
	b.PublishEdit(map[string]string{"content": "abc"})

	time.Sleep(50 * time.Millisecond)
	first := drain(ch)
	if len(first) != 1 || !strings.Contains(first[0], `"content":"a"`) {
		t.Fatalf("leading events = %q", first)
	}

	// Trailing flush delivers only the latest payload.
	time.Sleep(300 * time.Millisecond)
	rest := drain(ch)
	if len(rest) != 1 {
		t.Fatalf("trailing events = %q, want 1", rest)
	}
	if !strings.Contains(rest[0], "event: note.edited") || !strings.Contains(rest[0], `"content":"abc"`) {
		t.Errorf("trailing event = %q", rest[0])
	}
}

func TestPublishEdit_SpacedEditsAllDelivered(t *testing.T) {
	b := NewBroker(20 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishEdit("one")
	time.Sleep(60 * time.Millisecond)
	b.PublishEdit("two")
	time.Sleep(60 * time.Millisecond)

	if got := drain(ch); len(got) != 2 {
		t.Errorf("events = %q, want 2", got)
	}
}

func TestPublishNotThrottled(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: EventNoteChanged, Data: 1})
	b.Publish(Event{Type: EventNoteChanged, Data: 2})
	time.Sleep(50 * time.Millisecond)
	if got := drain(ch); len(got) != 2 {
		t.Errorf("events = %q, want 2", got)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: EventSettingsChanged, Data: map[string]bool{"isPinned": true}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: settings.changed") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.PublishEdit("x")
	b.PublishEdit("y")
	b.Close()

	deadline := time.After(time.Second)
	for open := true; open; {
		select {
		case _, open = <-ch:
		case <-deadline:
			t.Fatal("timeout waiting for channel close")
		}
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: EventNoteChanged, Data: nil})
	b.PublishEdit("z")
}
