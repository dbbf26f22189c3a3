// Package version carries the build version stamped via -ldflags.
package version

// Version is overridden at release build time.
var Version = "dev"
