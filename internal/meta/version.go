package meta

import (
	"fmt"
	"runtime"
)

// Info describes the build an ircconn binary came from. Everything but
// the platform and Go version is set by the linker, see the vars below.
type Info struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	Branch    string `json:"branch"`
	BuildTime string `json:"build_time"`
	Platform  string `json:"platform"`
	GoVersion string `json:"go_version"`
}

// These will be filled in using the linker -X flag
var (
	// Version as an arbitrary string
	Version = "dev"

	// Build is the Git sha from when we are building
	Build string

	// Branch is the Git branch that we are building from
	Branch string

	// BuildTimeUTC is the build time in UTC (year/month/day hour:min:sec)
	BuildTimeUTC string

	platform = fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
)

func GetInfo() Info {
	return Info{
		GoVersion: runtime.Version(),
		Version:   Version,
		Build:     Build,
		Branch:    Branch,
		BuildTime: BuildTimeUTC,
		Platform:  platform,
	}
}

func (i Info) String() string {
	s := "ircconn " + i.Version
	if i.Build != "" {
		s += " (" + i.Build + ")"
	}

	return s + " " + i.GoVersion + " " + i.Platform
}
