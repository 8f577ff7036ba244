package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Module    string `json:"module,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// readBuildInfo starts from the ldflags values and fills whatever they left at
// the defaults from the module and VCS data embedded by the Go toolchain.
func readBuildInfo() buildInfo {
	bi := buildInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	mod, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}
	bi.Module = mod.Main.Path
	if bi.Version == "dev" && mod.Main.Version != "" && mod.Main.Version != "(devel)" {
		bi.Version = mod.Main.Version
	}
	for _, s := range mod.Settings {
		switch {
		case s.Key == "vcs.revision" && bi.Commit == "none":
			bi.Commit = s.Value
		case s.Key == "vcs.time" && bi.Date == "unknown":
			bi.Date = s.Value
		}
	}
	return bi
}

func (bi buildInfo) write(w io.Writer) {
	fmt.Fprintf(w, "compose %s\n", bi.Version)
	if bi.Module != "" {
		fmt.Fprintf(w, "  module   %s\n", bi.Module)
	}
	fmt.Fprintf(w, "  commit   %s\n", bi.Commit)
	fmt.Fprintf(w, "  built    %s\n", bi.Date)
	fmt.Fprintf(w, "  go       %s %s\n", bi.GoVersion, bi.Platform)
}

func versionCmd() *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the compose version and the build it came from.

Values not set at link time are taken from the module and VCS data
embedded in the binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bi := readBuildInfo()
			out := cmd.OutOrStdout()

			switch {
			case short:
				fmt.Fprintln(out, bi.Version)
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(bi)
			default:
				bi.write(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")

	return cmd
}
