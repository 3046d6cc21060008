package chatrelay

import (
	"pkt.systems/chatrelay/core"
	"pkt.systems/chatrelay/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnRelayEvent(event schema.RelayEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnRelayEvent(event)
	}
}
