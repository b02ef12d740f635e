// Package version reports build information of the feature generator.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/NERVsystems/mapfeatures/pkg/version.BuildVersion=..."
var (
	BuildVersion = "dev"
	BuildCommit  = ""
	BuildDate    = ""
)

// Info returns the version, Go version, commit and build date. Commit and
// date fall back to the VCS stamp of the binary.
func Info() map[string]string {
	info := map[string]string{
		"version":    BuildVersion,
		"go_version": runtime.Version(),
		"commit":     BuildCommit,
		"build_date": BuildDate,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info["commit"] == "" {
					info["commit"] = s.Value
				}
			case "vcs.time":
				if info["build_date"] == "" {
					info["build_date"] = s.Value
				}
			}
		}
	}
	return info
}

// String returns a one line description of the build.
func String() string {
	info := Info()
	s := fmt.Sprintf("mapfeatures %s (%s", info["version"], info["go_version"])
	if info["commit"] != "" {
		s += ", commit " + info["commit"]
	}
	if info["build_date"] != "" {
		s += ", built " + info["build_date"]
	}
	return s + ")"
}
