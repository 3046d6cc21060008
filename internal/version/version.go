// Package version derives the binary's version from build metadata.
package version

import (
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/chatrelay"

// buildVersion can be injected at link time via
// -ldflags "-X pkt.systems/chatrelay/internal/version.buildVersion=v1.2.3".
var buildVersion = ""

// Current returns the release version, with any dirty suffix stripped.
func Current() string {
	return resolve(false)
}

// CurrentWithDirty returns the release version, keeping the +dirty suffix
// when the binary was built from a modified tree.
func CurrentWithDirty() string {
	return resolve(true)
}

// Module returns the main module path from build info.
func Module() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			return path
		}
	}
	return defaultModule
}

// resolve prefers the linker-injected version, then the module version from
// build info, then a pseudo version derived from vcs stamps.
func resolve(keepDirty bool) string {
	if v := strings.TrimSpace(buildVersion); v != "" {
		return trimDirty(v, keepDirty)
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "v0.0.0-unknown"
	}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
		return trimDirty(v, keepDirty)
	}
	if v := pseudoFromBuildInfo(info, keepDirty); v != "" {
		return trimDirty(v, keepDirty)
	}
	return "v0.0.0-unknown"
}

func trimDirty(v string, keep bool) string {
	v = strings.TrimSpace(v)
	if keep {
		return v
	}
	return strings.TrimSuffix(v, "+dirty")
}

// pseudoFromBuildInfo builds a go-style pseudo version from the embedded
// vcs revision and timestamp when no tagged version is available.
func pseudoFromBuildInfo(info *debug.BuildInfo, includeDirty bool) string {
	if info == nil {
		return ""
	}
	var revision, vcsTime string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			vcsTime = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" || vcsTime == "" {
		return ""
	}
	stamp, err := time.Parse(time.RFC3339, vcsTime)
	if err != nil {
		return ""
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	ver := "v0.0.0-" + stamp.UTC().Format("20060102150405") + "-" + revision
	if modified && includeDirty {
		ver += "+dirty"
	}
	return ver
}
