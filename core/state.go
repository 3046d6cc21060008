package core

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"pkt.systems/chatrelay/schema"
)

// conversation tracks the single foreground chat thread. The engine run loop
// owns it exclusively; worker goroutines only hand back immutable values.
type conversation struct {
	group        string
	lastSender   string
	lastContent  string
	asked        *lru.Cache[string, struct{}]
	pendingReply string
	lastInjected string
	lastSendAt   time.Time
}

func newConversation(askedMax int) (*conversation, error) {
	asked, err := lru.New[string, struct{}](askedMax)
	if err != nil {
		return nil, err
	}
	return &conversation{asked: asked}, nil
}

// shouldForward reports whether the candidate starts a new relay cycle and
// records it when it does. The check and the insert are one operation so two
// near-simultaneous triggers cannot both pass.
func (c *conversation) shouldForward(cand schema.Candidate, botName string) bool {
	if cand.Content == "" {
		return false
	}
	if botName != "" && cand.Sender == botName {
		return false
	}
	if cand.Sender == c.lastSender && cand.Content == c.lastContent {
		return false
	}
	// In a direct chat the bot's own reply surfaces as the bottom-most
	// content attributed to the peer, so it must be rejected by text, not
	// by sender name.
	if c.lastInjected != "" && cand.Content == c.lastInjected {
		return false
	}
	if c.asked.Contains(cand.Content) {
		return false
	}
	c.asked.Add(cand.Content, struct{}{})
	c.lastSender = cand.Sender
	c.lastContent = cand.Content
	if cand.Group != "" {
		c.group = cand.Group
	}
	return true
}
