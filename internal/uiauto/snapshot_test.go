package uiauto

import (
	"strings"
	"testing"

	"pkt.systems/chatrelay/internal/hostids"
)

func TestParseSnapshotRoundsSubpixelRects(t *testing.T) {
	snap := parseSnapshot(sampleDTO{
		Avatars: []nodeDTO{{Left: 19.6, Top: 100.2, Right: 99.6, Bottom: 180.2}},
	})
	if len(snap.Avatars) != 1 {
		t.Fatalf("avatars = %d", len(snap.Avatars))
	}
	bounds := snap.Avatars[0].Bounds
	if bounds.Left != 20 || bounds.Top != 100 || bounds.Right != 100 || bounds.Bottom != 180 {
		t.Fatalf("bounds = %+v", bounds)
	}
	if !bounds.Square() {
		t.Fatalf("80x80 avatar must round to a square")
	}
}

func TestParseSnapshotGroupAndCompose(t *testing.T) {
	snap := parseSnapshot(sampleDTO{
		Group:   []nodeDTO{{Text: "  Team  "}},
		Compose: []nodeDTO{{Text: ""}},
	})
	if !snap.GroupFound || snap.GroupName != "Team" {
		t.Fatalf("group = %q found=%v", snap.GroupName, snap.GroupFound)
	}
	if !snap.ComposeFound {
		t.Fatalf("compose field must be reported found")
	}
}

func TestParseSnapshotEmptyWindow(t *testing.T) {
	snap := parseSnapshot(sampleDTO{})
	if snap.GroupFound || snap.ComposeFound {
		t.Fatalf("empty read must report nothing found: %+v", snap)
	}
	if snap.Senders != nil || snap.Contents != nil {
		t.Fatalf("empty sequences must stay nil")
	}
}

func TestSampleScriptNamesEveryIdentifier(t *testing.T) {
	table := hostids.Latest()
	script := sampleScript(table)
	for _, id := range []string{
		table.GroupName, table.SenderName, table.MessageBody,
		table.ComposeField, table.SenderRow, table.Avatar,
	} {
		if !strings.Contains(script, id) {
			t.Fatalf("script is missing identifier %q", id)
		}
	}
}

func TestComposeScriptQuotesText(t *testing.T) {
	script := composeScript("com.tencent.mm:id/bkk", `he said "hi"`+"\nnext")
	if !strings.Contains(script, `\"hi\"`) {
		t.Fatalf("quotes must be escaped in: %s", script)
	}
	if !strings.Contains(script, `\n`) {
		t.Fatalf("newlines must be escaped in: %s", script)
	}
}
