package uiauto

import (
	"fmt"
	"math"
	"strings"

	"pkt.systems/chatrelay/internal/hostids"
	"pkt.systems/chatrelay/schema"
)

// nodeDTO is one element as reported by the sample script.
type nodeDTO struct {
	Text   string  `json:"text"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// sampleDTO is the raw window read produced in the page.
type sampleDTO struct {
	Group    []nodeDTO `json:"group"`
	Senders  []nodeDTO `json:"senders"`
	Rows     []nodeDTO `json:"rows"`
	Avatars  []nodeDTO `json:"avatars"`
	Contents []nodeDTO `json:"contents"`
	Compose  []nodeDTO `json:"compose"`
}

// sampleScript builds the page expression that collects text and bounds for
// every identifier in the table. One round trip reads the whole window.
func sampleScript(ids hostids.Table) string {
	return fmt.Sprintf(`(() => {
	const grab = (id) => Array.from(document.querySelectorAll('[resource-id="' + id + '"]')).map((el) => {
		const r = el.getBoundingClientRect();
		return {text: (el.value !== undefined && el.value !== '') ? el.value : (el.innerText || ''),
			left: r.left, top: r.top, right: r.right, bottom: r.bottom};
	});
	return {group: grab(%q), senders: grab(%q), rows: grab(%q), avatars: grab(%q), contents: grab(%q), compose: grab(%q)};
})()`, ids.GroupName, ids.SenderName, ids.SenderRow, ids.Avatar, ids.MessageBody, ids.ComposeField)
}

// composeScript writes text into the compose field and fires an input event
// so the host notices. Returns false when the field is absent.
func composeScript(composeID, text string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector('[resource-id=%q]');
	if (!el) { return false; }
	if (el.value !== undefined) { el.value = %q; } else { el.textContent = %q; }
	el.dispatchEvent(new Event('input', {bubbles: true}));
	return true;
})()`, composeID, text, text)
}

// clickSendScript clicks every leaf element whose visible text equals the
// send label and returns how many were clicked.
func clickSendScript(label string) string {
	return fmt.Sprintf(`(() => {
	let clicked = 0;
	for (const el of document.querySelectorAll('*')) {
		if (el.childElementCount === 0 && (el.innerText || '').trim() === %q) {
			el.click();
			clicked++;
		}
	}
	return clicked;
})()`, label)
}

func parseSnapshot(dto sampleDTO) schema.Snapshot {
	snap := schema.Snapshot{
		SenderRows:   parseNodes(dto.Rows),
		Senders:      parseNodes(dto.Senders),
		Avatars:      parseNodes(dto.Avatars),
		Contents:     parseNodes(dto.Contents),
		ComposeFound: len(dto.Compose) > 0,
	}
	if len(dto.Group) > 0 {
		snap.GroupName = strings.TrimSpace(dto.Group[0].Text)
		snap.GroupFound = snap.GroupName != ""
	}
	return snap
}

func parseNodes(dtos []nodeDTO) []schema.Node {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]schema.Node, len(dtos))
	for i, d := range dtos {
		out[i] = schema.Node{Text: d.Text, Bounds: parseRect(d)}
	}
	return out
}

// parseRect rounds the subpixel CSS rect to whole coordinates. Avatar
// squareness checks depend on rounding width and height consistently.
func parseRect(d nodeDTO) schema.Rect {
	return schema.Rect{
		Left:   int(math.Round(d.Left)),
		Top:    int(math.Round(d.Top)),
		Right:  int(math.Round(d.Right)),
		Bottom: int(math.Round(d.Bottom)),
	}
}
