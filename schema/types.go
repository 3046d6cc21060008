package schema

import "time"

// Rect is a bounding rectangle in window coordinates.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width returns the rectangle width.
func (r Rect) Width() int {
	w := r.Right - r.Left
	if w < 0 {
		return -w
	}
	return w
}

// Height returns the rectangle height.
func (r Rect) Height() int {
	h := r.Bottom - r.Top
	if h < 0 {
		return -h
	}
	return h
}

// Square reports whether the rectangle is a non-empty square. Avatars are
// square; other imagery in a message row is not.
func (r Rect) Square() bool {
	return r.Width() > 0 && r.Width() == r.Height()
}

// DistanceTo returns the Manhattan distance between the centers of two
// rectangles. Used to correlate elements by geometry instead of list index.
func (r Rect) DistanceTo(other Rect) int {
	dx := (r.Left + r.Right) - (other.Left + other.Right)
	if dx < 0 {
		dx = -dx
	}
	dy := (r.Top + r.Bottom) - (other.Top + other.Bottom)
	if dy < 0 {
		dy = -dy
	}
	return (dx + dy) / 2
}

// Contains reports whether the point is inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Node is a named window element with its resolved text and bounds.
type Node struct {
	Text   string
	Bounds Rect
}

// Snapshot is a point-in-time read of the foreground chat window. It is
// produced fresh on every sample; the underlying tree is platform owned and
// may be invalidated between reads, so snapshots are never cached.
type Snapshot struct {
	GroupName    string
	GroupFound   bool
	SenderRows   []Node
	Senders      []Node
	Avatars      []Node
	Contents     []Node
	ComposeFound bool
}

// ChatEvent is a content-changed notification delivered by the host
// platform. It is a trigger to resample the window, not a payload carrier;
// only the latest event of a burst matters.
type ChatEvent struct {
	WindowClass string
	Package     string
	At          time.Time
}

// Candidate is an extracted inbound message awaiting the forward decision.
type Candidate struct {
	Group   string
	Sender  string
	Content string
}

// Reply is an assembled backend answer ready for injection. References ride
// alongside for observers; they are never rendered into compose text.
type Reply struct {
	Text       string
	References []string
}
