package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = ""

// getVersion returns the version string shown by --version and the
// version subcommand. Priority: ldflags > debug.ReadBuildInfo > "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if buildInfo.Main.Version != "" {
			return buildInfo.Main.Version
		}
	}
	return "(devel)"
}

// buildRevision returns the short VCS revision the Go toolchain
// embedded at build time, or an empty string for builds outside a
// checkout (e.g. go install of a published version).
func buildRevision() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range buildInfo.Settings {
		if setting.Key == "vcs.revision" {
			if len(setting.Value) > 7 {
				return setting.Value[:7]
			}
			return setting.Value
		}
	}
	return ""
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version of sitecrawl and, when available, the revision it was built from.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := "sitecrawl " + getVersion()
			if rev := buildRevision(); rev != "" {
				out += " (" + rev + ")"
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		},
	}
}
