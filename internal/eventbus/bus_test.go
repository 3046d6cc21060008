package eventbus

import (
	"testing"
	"time"

	"pkt.systems/chatrelay/schema"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	event := schema.RelayEvent{Type: schema.EventForwarded, Group: "Team", Sender: "Alice"}
	bus.OnRelayEvent(event)

	select {
	case got := <-ch:
		if got.Type != schema.EventForwarded {
			t.Fatalf("expected forwarded event, got %v", got.Type)
		}
		if got.Group != event.Group || got.Sender != event.Sender {
			t.Fatalf("unexpected payload: %+v", got)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestPublishDoesNotBlockWhenFull(t *testing.T) {
	bus := New(nil)
	bus.depth = 1
	ch, cancel := bus.Subscribe()
	defer cancel()
	_ = ch

	var sendCh chan schema.RelayEvent
	bus.mu.Lock()
	for sub := range bus.subs {
		sendCh = sub
		break
	}
	bus.mu.Unlock()
	if sendCh == nil {
		t.Fatalf("expected subscriber channel")
	}
	sendCh <- schema.RelayEvent{Type: schema.EventReply}
	done := make(chan struct{})
	go func() {
		bus.OnRelayEvent(schema.RelayEvent{Type: schema.EventInjected})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("publish blocked on full channel")
	}
}
