package logx

import (
	"context"

	"pkt.systems/pslog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithGroup annotates the logger with the conversation group when available.
func WithGroup(log pslog.Logger, group string) pslog.Logger {
	if group == "" {
		return log
	}
	return log.With("group", group)
}

// WithCycle annotates the logger with relay cycle identity.
func WithCycle(log pslog.Logger, group, sender string) pslog.Logger {
	log = WithGroup(log, group)
	if sender != "" {
		log = log.With("sender", sender)
	}
	return log
}
