// Package utils provides small helpers shared by the binder commands that
// don't warrant their own package.
package utils

// Build metadata, set with -ldflags "-X" at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
