package relayhttp

import (
	"strings"
	"testing"

	"pkt.systems/chatrelay/schema"
)

func answersFixture() schema.RelayResponse {
	return schema.RelayResponse{
		MsgCode: 200,
		Data: []schema.AnswerPair{
			{
				Req: schema.RelayRequest{Query: schema.Query{Type: schema.QueryText, Content: "what is a relay"}},
				Rsp: schema.AnswerBody{Code: 0, State: "ok", Text: "A", References: []string{"relay.md"}},
			},
			{
				Req: schema.RelayRequest{Query: schema.Query{Type: schema.QueryText, Content: "second question"}},
				Rsp: schema.AnswerBody{Code: 1, State: "timeout"},
			},
		},
	}
}

func TestRenderReplyOmitsFailuresWithoutDebug(t *testing.T) {
	reply := RenderReply(answersFixture(), false)
	if !strings.Contains(reply.Text, "A") {
		t.Fatalf("rendered text %q must contain the successful answer", reply.Text)
	}
	if !strings.Contains(reply.Text, "what is a relay\n------\nA") {
		t.Fatalf("rendered text %q must echo the question above the answer", reply.Text)
	}
	if strings.Contains(reply.Text, "timeout") {
		t.Fatalf("rendered text %q must omit failed items", reply.Text)
	}
}

func TestRenderReplyIncludesFailuresWithDebug(t *testing.T) {
	reply := RenderReply(answersFixture(), true)
	if !strings.Contains(reply.Text, "A") || !strings.Contains(reply.Text, "timeout") {
		t.Fatalf("debug rendering %q must include both items", reply.Text)
	}
	if !strings.Contains(reply.Text, "second question\n---\n1\ntimeout") {
		t.Fatalf("debug rendering %q must include code and state", reply.Text)
	}
}

func TestRenderReplyCollectsReferencesOutOfBand(t *testing.T) {
	reply := RenderReply(answersFixture(), false)
	if len(reply.References) != 1 || reply.References[0] != "relay.md" {
		t.Fatalf("references = %v", reply.References)
	}
	if strings.Contains(reply.Text, "relay.md") {
		t.Fatalf("references must never be rendered into compose text")
	}
}

func TestRenderReplyEmptyResponse(t *testing.T) {
	reply := RenderReply(schema.RelayResponse{}, false)
	if reply.Text != "" || len(reply.References) != 0 {
		t.Fatalf("empty response must render empty reply, got %+v", reply)
	}
}
