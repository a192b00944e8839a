// Package version carries build metadata stamped in by the linker.
package version

import "runtime"

const Name = "aacboard"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return Name + " " + Version + " (commit=" + Commit + ", date=" + Date + ", go=" + runtime.Version() + ")"
}

// UserAgent is sent with board and sound fetches.
func UserAgent() string {
	return Name + "/" + Version
}
