package commands

import (
	"fmt"
	"strings"
)

const commitLen = 8

var (
	version   = "dev"
	commit    = "none"
	date      = "unknown"
	treeState = "clean"
)

// SetVersionInfo sets the version information from main.
func SetVersionInfo(v, c, d, tree string) {
	version = v
	commit = c
	date = d
	treeState = tree
}

// VersionString renders the version line. The short form is used with --quiet.
func VersionString(short bool) string {
	v := "retry v" + strings.TrimPrefix(version, "v")
	if short {
		return v
	}

	build := commit
	if len(build) > commitLen {
		build = build[:commitLen]
	}
	if treeState == "dirty" {
		build += " (dirty)"
	}
	return fmt.Sprintf("%s - %s on %s", v, build, date)
}
