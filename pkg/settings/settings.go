// Package settings holds build metadata and the per-invocation settings that
// the tplx commands pass to each other through a context.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "tplx"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Host names the surface a command drives the completion engine from.
type Host string

const (
	HostCLI    Host = "cli"
	HostEditor Host = "editor"
	HostServer Host = "server"
)

// Run holds settings for a single execution of the binary. Flags populate it
// in the root command before any subcommand runs.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigFile  string
	Host        Host
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults for a command-line invocation.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Host:        HostCLI,
		ExitOnError: true,
	}
}

// Interactive reports whether the run drives a terminal UI. Such runs must not
// log to stderr unless a log file was requested.
func (r *Run) Interactive() bool {
	return r != nil && r.Host == HostEditor
}
