package relayhttp

import (
	"fmt"
	"strings"

	"pkt.systems/chatrelay/schema"
)

// Dividers between the echoed question and the answer in rendered replies.
const (
	answerDivider = "\n------\n"
	debugDivider  = "\n---\n"
)

// RenderReply flattens backend answer items into compose text. Each item
// becomes one paragraph of the echoed question and its answer. Items with a
// non-zero code are omitted unless debug is set, in which case their code and
// diagnostic state are rendered too. References are collected alongside for
// observers; they never enter the compose text.
func RenderReply(resp schema.RelayResponse, debug bool) schema.Reply {
	var b strings.Builder
	var refs []string
	for _, item := range resp.Data {
		if debug {
			b.WriteString(item.Req.Query.Content)
			b.WriteString(debugDivider)
			fmt.Fprintf(&b, "%d\n", item.Rsp.Code)
			b.WriteString(item.Rsp.State)
			b.WriteString("\n")
			b.WriteString(item.Rsp.Text)
		} else if item.Rsp.Code == schema.AnswerOK {
			b.WriteString(item.Req.Query.Content)
			b.WriteString(answerDivider)
			b.WriteString(item.Rsp.Text)
		}
		refs = append(refs, item.Rsp.References...)
	}
	return schema.Reply{Text: b.String(), References: refs}
}
