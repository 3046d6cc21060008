package main

import (
	"bytes"
	"context"
	"testing"

	"pkt.systems/chatrelay/internal/appconfig"
	"pkt.systems/chatrelay/internal/hostids"
	"pkt.systems/pslog"
)

func TestResolveIdentifiersAppliesOverrides(t *testing.T) {
	cfg := appconfig.SurfaceConfig{
		HostVersion: "8.0.47",
		IDs: appconfig.IDsConfig{
			ComposeField: "com.tencent.mm:id/custom",
		},
	}
	ids := resolveIdentifiers(cfg, pslog.Ctx(context.Background()))
	if ids.ComposeField != "com.tencent.mm:id/custom" {
		t.Fatalf("compose override not applied: %q", ids.ComposeField)
	}
	if ids.GroupName != hostids.Latest().GroupName {
		t.Fatalf("unset fields must keep the table value: %q", ids.GroupName)
	}
}

func TestResolveIdentifiersUnknownVersionFallsBack(t *testing.T) {
	cfg := appconfig.SurfaceConfig{HostVersion: "1.0.0"}
	ids := resolveIdentifiers(cfg, pslog.Ctx(context.Background()))
	if ids != hostids.Latest() {
		t.Fatalf("unknown version must fall back to newest table")
	}
}

func TestFirstWindowClass(t *testing.T) {
	if got := firstWindowClass(nil); got != "" {
		t.Fatalf("empty list = %q", got)
	}
	if got := firstWindowClass([]string{"a", "b"}); got != "a" {
		t.Fatalf("first class = %q", got)
	}
}

func TestVersionCmdPrintsModule(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("version: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected version output")
	}
}
