// SPDX-License-Identifier: MIT
//
// Package build manages build metadata injected at compile time via
// linker flags, e.g.:
//
//	go build -ldflags "-X voicebird/internal/build.buildName=voicebird \
//	                   -X voicebird/internal/build.buildVersion=0.1.0"
//
// Development builds without ldflags fall back to placeholder values.
package build

type Flags struct {
	Name        string // Application name
	Description string // One-line summary for CLI help
	Time        string // Build timestamp
	Commit      string // Git commit hash
	Version     string // Semantic version
}

// Package-level variables populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

// Get returns the build information, substituting development
// placeholders for any flag that was not injected.
func Get() Flags {
	f := Flags{
		Name:    buildName,
		Time:    buildTime,
		Commit:  buildCommit,
		Version: buildVersion,
	}
	if f.Name == "" {
		f.Name = "voicebird"
	}
	f.Description = "Real-time voice tuner and pitch-controlled game"
	if f.Time == "" {
		f.Time = "unknown"
	}
	if f.Commit == "" {
		f.Commit = "unknown"
	}
	if f.Version == "" {
		f.Version = "dev"
	}
	return f
}
