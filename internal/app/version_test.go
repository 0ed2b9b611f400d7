package app

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestBuildVersion_StartsWithVersion(t *testing.T) {
	t.Parallel()

	if got := BuildVersion(); !strings.HasPrefix(got, Version+" (commit: ") {
		t.Errorf("BuildVersion() = %q", got)
	}
}

func TestVCSStamp(t *testing.T) {
	t.Parallel()

	settings := []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2025-07-16T09:00:00Z"},
	}

	tests := []struct {
		name               string
		commit, built      string
		wantCommit, wantAt string
	}{
		{"fills unknowns", "unknown", "unknown", "0123456789ab", "2025-07-16T09:00:00Z"},
		{"ldflags win", "abc123", "yesterday", "abc123", "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			commit, built := vcsStamp(settings, tt.commit, tt.built)
			if commit != tt.wantCommit || built != tt.wantAt {
				t.Errorf("vcsStamp = (%q, %q), want (%q, %q)", commit, built, tt.wantCommit, tt.wantAt)
			}
		})
	}

	if c, b := vcsStamp(nil, "unknown", "unknown"); c != "unknown" || b != "unknown" {
		t.Errorf("vcsStamp(nil) = (%q, %q)", c, b)
	}
}
