// Package version exposes the build metadata stamped into the binary.
package version

import "runtime"

// Overridden at release time via
// -ldflags "-X tradepulse/internal/version.Version=v1.2.3 ...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Info is the shape served by the /version endpoint and labeled onto the
// build_info metric.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get assembles the current build info.
func Get() Info {
	return Info{
		Service:   "tradepulse",
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
