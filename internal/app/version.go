package app

import (
	"fmt"
	"runtime/debug"
)

// Version, Commit, and BuildTime are set via ldflags at build time.
// Example: go build -ldflags "-X github.com/heartmarshall/studyplanner-backend/internal/app.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion returns a formatted version string for startup logs and the
// planner version command. Without ldflags the commit and time come from the
// VCS stamp embedded by the go tool, when present.
func BuildVersion() string {
	commit, built := Commit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		commit, built = vcsStamp(info.Settings, commit, built)
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, commit, built)
}

func vcsStamp(settings []debug.BuildSetting, commit, built string) (string, string) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "unknown" && s.Value != "" {
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			}
		case "vcs.time":
			if built == "unknown" && s.Value != "" {
				built = s.Value
			}
		}
	}
	return commit, built
}
