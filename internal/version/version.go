// Package version resolves the build identity reported by carlinkd, from
// release ldflags when present and from the module's embedded VCS stamp
// otherwise.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Version and Commit are injected at release time:
//
//	go build -ldflags="-X github.com/autokit/carlink/internal/version.Version=v1.2.3 \
//	                   -X github.com/autokit/carlink/internal/version.Commit=abc123"
//
// A plain `go build` from a git checkout still gets a usable identity from
// debug.ReadBuildInfo; anything else reports a dev build.
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo()
	}
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills whichever of Version and Commit ldflags left empty
// using the VCS settings the toolchain embeds in the binary.
func fromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	vcs := map[string]string{}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified", "vcs.time":
			vcs[s.Key] = s.Value
		}
	}

	if Commit == "" {
		if rev := vcs["vcs.revision"]; rev != "" {
			Commit = shortHash(rev)
			if vcs["vcs.modified"] == "true" {
				Commit += "-dirty"
			}
		}
	}

	// Build info carries no tags, so an untagged build is named after the
	// commit date.
	if Version == "" {
		if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			Version = "dev-" + t.Format("20060102")
		}
	}
}

func shortHash(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Full is the one-line identity printed by `carlinkd version` and logged at
// daemon startup.
func Full() string {
	return fmt.Sprintf("carlinkd %s (commit %s, %s)", Version, Commit, runtime.Version())
}
