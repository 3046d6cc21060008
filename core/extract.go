package core

import "pkt.systems/chatrelay/schema"

// avatarLeftMax is the horizontal threshold separating received rows (avatar
// hugging the left edge) from sent rows (avatar on the right, excluded).
const avatarLeftMax = 300

// Extract resolves the most recent inbound message from a snapshot.
//
// Among the sender rows it selects the bottom-most one whose avatar is a
// square anchored left of avatarLeftMax; the sender name and message body
// nearest that row by geometry are paired with it. Elements are never
// correlated by list index because parallel node queries do not guarantee
// aligned ordering.
//
// A snapshot with no sender rows at all is a single-party conversation: the
// group name doubles as the sender. A snapshot with rows but no attributable
// inbound row yields no candidate.
func Extract(snap schema.Snapshot) (schema.Candidate, bool) {
	group := ""
	if snap.GroupFound {
		group = snap.GroupName
	}

	if len(snap.SenderRows) == 0 && len(snap.Senders) == 0 {
		if group == "" {
			return schema.Candidate{}, false
		}
		content, ok := bottomMost(snap.Contents)
		if !ok || content.Text == "" {
			return schema.Candidate{}, false
		}
		return schema.Candidate{Group: group, Sender: group, Content: content.Text}, true
	}

	row, ok := latestInboundRow(snap)
	if !ok {
		return schema.Candidate{}, false
	}
	sender, ok := nearest(row.Bounds, snap.Senders)
	if !ok || sender.Text == "" {
		return schema.Candidate{}, false
	}
	content, ok := nearest(row.Bounds, snap.Contents)
	if !ok || content.Text == "" {
		return schema.Candidate{}, false
	}
	return schema.Candidate{Group: group, Sender: sender.Text, Content: content.Text}, true
}

// latestInboundRow picks the bottom-most sender row with a left-aligned
// square avatar inside its bounds.
func latestInboundRow(snap schema.Snapshot) (schema.Node, bool) {
	var best schema.Node
	found := false
	for _, row := range snap.SenderRows {
		avatar, ok := avatarIn(row.Bounds, snap.Avatars)
		if !ok {
			continue
		}
		if !avatar.Bounds.Square() || avatar.Bounds.Left >= avatarLeftMax {
			continue
		}
		if !found || row.Bounds.Top > best.Bounds.Top {
			best = row
			found = true
		}
	}
	return best, found
}

func avatarIn(row schema.Rect, avatars []schema.Node) (schema.Node, bool) {
	for _, avatar := range avatars {
		cx := (avatar.Bounds.Left + avatar.Bounds.Right) / 2
		cy := (avatar.Bounds.Top + avatar.Bounds.Bottom) / 2
		if row.Contains(cx, cy) {
			return avatar, true
		}
	}
	return schema.Node{}, false
}

func nearest(to schema.Rect, nodes []schema.Node) (schema.Node, bool) {
	var best schema.Node
	bestDist := -1
	for _, node := range nodes {
		d := to.DistanceTo(node.Bounds)
		if bestDist < 0 || d < bestDist {
			best = node
			bestDist = d
		}
	}
	return best, bestDist >= 0
}

func bottomMost(nodes []schema.Node) (schema.Node, bool) {
	var best schema.Node
	found := false
	for _, node := range nodes {
		if !found || node.Bounds.Top > best.Bounds.Top {
			best = node
			found = true
		}
	}
	return best, found
}
