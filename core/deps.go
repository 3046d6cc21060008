package core

import (
	"context"

	"pkt.systems/chatrelay/schema"
	"pkt.systems/pslog"
)

// SnapshotReader samples the foreground chat window tree. Sample is a pure
// read: absent elements come back as empty sequences, never as errors.
type SnapshotReader interface {
	Sample(ctx context.Context) (schema.Snapshot, error)
}

// Injector writes reply text into the compose field and activates the send
// control. Implementations marshal all tree mutation onto the platform's
// UI-affinity executor; the settle delay between set-text and send is theirs
// to enforce. Returns true only if at least one send control was activated.
type Injector interface {
	Inject(ctx context.Context, text string) (bool, error)
}

// RelayClient issues text and poll queries to the answer backend.
type RelayClient interface {
	SendText(ctx context.Context, group, sender, content string) error
	Poll(ctx context.Context, group, sender string) (schema.Reply, error)
}

// EventSink observes relay lifecycle events.
type EventSink interface {
	OnRelayEvent(event schema.RelayEvent)
}

// EngineDeps captures dependencies for the relay engine.
type EngineDeps struct {
	Reader   SnapshotReader
	Injector Injector
	Client   RelayClient
	Sink     EventSink
	Logger   pslog.Logger
}
