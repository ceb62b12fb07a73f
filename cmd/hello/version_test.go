package main

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })
	Version = "0.1.0-test"
	GitCommit = "abc123"

	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{"Hello 0.1.0-test", "Git Commit: abc123", runtime.Version()} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestBuildInfo(t *testing.T) {
	origVersion, origDate := Version, BuildDate
	t.Cleanup(func() { Version, BuildDate = origVersion, origDate })
	Version = "1.2.3"
	BuildDate = "2026-10-18"

	info := buildInfo()
	if info.Version != "1.2.3" || info.BuildTime != "2026-10-18" || info.Commit != GitCommit {
		t.Errorf("buildInfo() = %+v", info)
	}
}
