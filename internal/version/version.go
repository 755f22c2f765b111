package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are set at build time via ldflags. When left unset the
// VCS stamp that the go tool embeds in the binary is used instead.
var (
	Commit    = ""
	BuildTime = ""
)

// Info describes the running safecase build.
type Info struct {
	Commit    string
	BuildTime string
	Modified  bool
	GoVersion string
}

// Get resolves build information, preferring ldflags over embedded VCS data.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(Commit, BuildTime, bi)
}

func resolve(commit, buildTime string, bi *debug.BuildInfo) Info {
	info := Info{Commit: commit, BuildTime: buildTime}
	if bi != nil {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

// String renders the version for --version (commit based, no semver).
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if i.Modified {
		commit += "-dirty"
	}
	s := fmt.Sprintf("safecase dev (commit: %s, built: %s", commit, i.BuildTime)
	if i.GoVersion != "" {
		s += ", " + i.GoVersion
	}
	return s + ")"
}

// String returns the version string of the running binary.
func String() string {
	return Get().String()
}
