package core

import (
	"fmt"
	"testing"

	"pkt.systems/chatrelay/schema"
)

func TestShouldForwardDedupIdempotence(t *testing.T) {
	conv, err := newConversation(16)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}
	cand := schema.Candidate{Group: "Team", Sender: "Alice", Content: "hello"}
	if !conv.shouldForward(cand, "bot") {
		t.Fatalf("first candidate must forward")
	}
	if conv.shouldForward(cand, "bot") {
		t.Fatalf("identical candidate must not forward twice")
	}
}

func TestShouldForwardRejectsSelfMessages(t *testing.T) {
	conv, err := newConversation(16)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}
	cand := schema.Candidate{Group: "Team", Sender: "bot", Content: "echo"}
	if conv.shouldForward(cand, "bot") {
		t.Fatalf("self message must not forward")
	}
	if conv.lastSender != "" || conv.lastContent != "" {
		t.Fatalf("rejected candidate must not be recorded")
	}
}

func TestShouldForwardRejectsAskedContentFromOtherSender(t *testing.T) {
	conv, err := newConversation(16)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}
	if !conv.shouldForward(schema.Candidate{Group: "Team", Sender: "Alice", Content: "hello"}, "") {
		t.Fatalf("first candidate must forward")
	}
	if conv.shouldForward(schema.Candidate{Group: "Team", Sender: "Bob", Content: "hello"}, "") {
		t.Fatalf("already-asked content must not forward for any sender")
	}
}

func TestShouldForwardRejectsEmptyContent(t *testing.T) {
	conv, err := newConversation(16)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}
	if conv.shouldForward(schema.Candidate{Group: "Team", Sender: "Alice"}, "") {
		t.Fatalf("empty content must not forward")
	}
}

func TestShouldForwardRejectsLastInjectedText(t *testing.T) {
	conv, err := newConversation(16)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}
	conv.lastInjected = "hello\n------\nhi there"
	// A direct chat attributes the bot's own reply to the peer.
	cand := schema.Candidate{Group: "Alice", Sender: "Alice", Content: conv.lastInjected}
	if conv.shouldForward(cand, "bot") {
		t.Fatalf("injected text must not forward as a new question")
	}
	if conv.asked.Contains(cand.Content) {
		t.Fatalf("rejected echo must not be recorded as asked")
	}
	if !conv.shouldForward(schema.Candidate{Group: "Alice", Sender: "Alice", Content: "fresh"}, "bot") {
		t.Fatalf("fresh content must still forward")
	}
}

func TestAskedCacheEvictionMakesOldQuestionsReaskable(t *testing.T) {
	conv, err := newConversation(2)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}
	for i := 0; i < 3; i++ {
		cand := schema.Candidate{Group: "Team", Sender: "Alice", Content: fmt.Sprintf("q%d", i)}
		if !conv.shouldForward(cand, "") {
			t.Fatalf("candidate %d must forward", i)
		}
	}
	// q0 was evicted from the bounded cache.
	if !conv.shouldForward(schema.Candidate{Group: "Team", Sender: "Bob", Content: "q0"}, "") {
		t.Fatalf("evicted question must be re-askable")
	}
}
