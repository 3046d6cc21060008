package core

import "time"

// NoDoubleClick drops attempts that arrive within the guard window of the
// previous accepted attempt. It protects the send control from being
// activated twice by overlapping poll-success callbacks. Not safe for
// concurrent use; the engine run loop is the only caller.
type NoDoubleClick struct {
	window time.Duration
	last   time.Time
	now    func() time.Time
}

// NewNoDoubleClick constructs a throttle with the given guard window.
func NewNoDoubleClick(window time.Duration) *NoDoubleClick {
	return &NoDoubleClick{window: window, now: time.Now}
}

// Pass reports whether the attempt is accepted and records it when it is.
// The first attempt always passes.
func (t *NoDoubleClick) Pass() bool {
	now := t.now()
	if t.last.IsZero() || now.Sub(t.last) > t.window {
		t.last = now
		return true
	}
	return false
}
