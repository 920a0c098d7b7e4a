// Package conf carries build-time identity, overridden via -ldflags.
package conf

var (
	// Executable is the binary name shown in help and version output.
	Executable = "marvin"

	// GitVersion is stamped at build time.
	GitVersion = "dev"
)
