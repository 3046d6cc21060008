// Package eventbus fans relay lifecycle events out to observers such as the
// SSH transcript console.
package eventbus

import (
	"context"
	"sync"

	"pkt.systems/chatrelay/schema"
	"pkt.systems/pslog"
)

// Bus fanouts relay events to subscribers. Slow subscribers drop events
// rather than blocking the engine.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan schema.RelayEvent]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan schema.RelayEvent]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns a channel + cancel.
func (b *Bus) Subscribe() (<-chan schema.RelayEvent, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan schema.RelayEvent, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	b.log.Debug("eventbus subscribe", "subs", count)
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
		b.log.Debug("eventbus unsubscribe")
	}
}

// OnRelayEvent publishes a relay event. Implements the engine's event sink.
func (b *Bus) OnRelayEvent(event schema.RelayEvent) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := make([]chan schema.RelayEvent, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "count", dropped)
	}
}
