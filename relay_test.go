package chatrelay

import (
	"context"
	"sync"
	"testing"
	"time"

	"pkt.systems/chatrelay/schema"
)

type stubReader struct {
	snap schema.Snapshot
}

func (r *stubReader) Sample(ctx context.Context) (schema.Snapshot, error) {
	return r.snap, nil
}

type stubInjector struct {
	mu    sync.Mutex
	texts []string
}

func (i *stubInjector) Inject(ctx context.Context, text string) (bool, error) {
	i.mu.Lock()
	i.texts = append(i.texts, text)
	i.mu.Unlock()
	return true, nil
}

type stubClient struct{}

func (c *stubClient) SendText(ctx context.Context, group, sender, content string) error {
	return nil
}

func (c *stubClient) Poll(ctx context.Context, group, sender string) (schema.Reply, error) {
	return schema.Reply{Text: "hi Alice"}, nil
}

type stubSink struct {
	events chan schema.RelayEvent
}

func (s *stubSink) OnRelayEvent(event schema.RelayEvent) {
	select {
	case s.events <- event:
	default:
	}
}

func inboundSnapshot(sender, content string) schema.Snapshot {
	row := schema.Node{Bounds: schema.Rect{Left: 0, Top: 400, Right: 1080, Bottom: 600}}
	avatar := schema.Node{Bounds: schema.Rect{Left: 20, Top: 420, Right: 120, Bottom: 520}}
	name := schema.Node{Text: sender, Bounds: schema.Rect{Left: 160, Top: 420, Right: 400, Bottom: 460}}
	body := schema.Node{Text: content, Bounds: schema.Rect{Left: 160, Top: 480, Right: 700, Bottom: 560}}
	return schema.Snapshot{
		GroupName:    "Team",
		GroupFound:   true,
		SenderRows:   []schema.Node{row},
		Avatars:      []schema.Node{avatar},
		Senders:      []schema.Node{name},
		Contents:     []schema.Node{body},
		ComposeFound: true,
	}
}

func TestRelayEndToEnd(t *testing.T) {
	events := make(chan schema.ChatEvent, 4)
	sink := &stubSink{events: make(chan schema.RelayEvent, 16)}
	injector := &stubInjector{}

	relay, err := New(RelayConfig{
		Engine: schema.EngineConfig{
			DeadZone:       time.Nanosecond,
			ThrottleWindow: time.Nanosecond,
			PollInterval:   time.Millisecond,
		},
	}, RelayDeps{
		Reader:   &stubReader{snap: inboundSnapshot("Alice", "hello")},
		Injector: injector,
		Client:   &stubClient{},
		Events:   events,
		Sink:     sink,
	})
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}

	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = relay.Stop(context.Background()) })

	// First notification only primes the dead zone clock.
	events <- schema.ChatEvent{At: time.Now()}
	time.Sleep(30 * time.Millisecond)
	events <- schema.ChatEvent{At: time.Now()}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-sink.events:
			if event.Type != schema.EventInjected {
				continue
			}
			injector.mu.Lock()
			texts := append([]string(nil), injector.texts...)
			injector.mu.Unlock()
			if len(texts) != 1 {
				t.Fatalf("injections = %d", len(texts))
			}
			return
		case <-deadline:
			t.Fatalf("timed out waiting for injection")
		}
	}
}

func TestRelayRequiresEventStream(t *testing.T) {
	_, err := New(RelayConfig{}, RelayDeps{
		Reader:   &stubReader{},
		Injector: &stubInjector{},
		Client:   &stubClient{},
	})
	if err == nil {
		t.Fatalf("expected error without event stream")
	}
}

func TestRelayStartTwiceRejected(t *testing.T) {
	events := make(chan schema.ChatEvent)
	relay, err := New(RelayConfig{}, RelayDeps{
		Reader:   &stubReader{},
		Injector: &stubInjector{},
		Client:   &stubClient{},
		Events:   events,
	})
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = relay.Stop(context.Background()) })
	if err := relay.Start(context.Background()); err == nil {
		t.Fatalf("second start must be rejected")
	}
}
