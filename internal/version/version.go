// Package version holds the build version, set with -ldflags.
package version

var Version = "dev"
