package console

import (
	"strings"
	"testing"
	"time"

	"pkt.systems/chatrelay/schema"
)

func TestFormatEventInjectedLine(t *testing.T) {
	at := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	line := formatEvent(schema.RelayEvent{
		Type:   schema.EventInjected,
		At:     at,
		Group:  "Team",
		Sender: "Alice",
		Text:   "hello\nworld",
	})
	if !strings.HasPrefix(line, "14:05:09 [injected] Team/Alice: hello world") {
		t.Fatalf("line = %q", line)
	}
	if !strings.HasSuffix(line, "\r\n") {
		t.Fatalf("line must end with crlf: %q", line)
	}
}

func TestFormatEventReferencesIndented(t *testing.T) {
	out := formatEvent(schema.RelayEvent{
		Type:       schema.EventReply,
		Group:      "Team",
		Text:       "answer",
		References: []string{"faq.md", "guide.md"},
	})
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if lines[1] != "    ref faq.md" || lines[2] != "    ref guide.md" {
		t.Fatalf("reference lines = %q", lines[1:])
	}
}

func TestFormatEventDetail(t *testing.T) {
	out := formatEvent(schema.RelayEvent{
		Type:   schema.EventDiscarded,
		Group:  "Team",
		Detail: "foreground changed",
	})
	if !strings.Contains(out, "(foreground changed)") {
		t.Fatalf("detail missing: %q", out)
	}
}
