// Package buildinfo carries the version stamp baked in at build time.
package buildinfo

// Set via -ldflags at release build; the defaults identify a
// from-source build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
