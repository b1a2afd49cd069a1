package tui

import "strings"

// BuildInfo holds build-time metadata for display in the TUI.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// String formats the build as "version (commit)". Empty fields are left out.
func (b BuildInfo) String() string {
	s := b.Version
	if b.Commit != "" {
		commit := b.Commit[:min(len(b.Commit), 7)]
		s = strings.TrimSpace(s + " (" + commit + ")")
	}
	return s
}
