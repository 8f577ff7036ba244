package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/compose/internal/config"
	"github.com/vango-dev/compose/internal/errors"
	"github.com/vango-dev/compose/pkg/host"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	dir        string
	configFile string
	debug      bool
}

func main() {
	if os.Getenv("NO_COLOR") != "" {
		errors.DisableColors()
	}
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "compose",
		Short: "Reactive state composition for Go components",
		Long: `compose runs the counter components built on compose.Use.

Each component gets reactive records, ref cells and watchers from its
setup function. Writes re-render the component on the next flush.

  • run    mounts the components and simulates clicks
  • serve  serves the components to browsers over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "Directory containing compose.json or compose.yaml")
	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Configuration file (overrides --dir)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging and runtime checks")

	rootCmd.AddCommand(
		runCmd(&flags),
		serveCmd(&flags),
		initCmd(&flags),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig loads and validates the configuration named by flags.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configFile != "" {
		cfg, err = config.LoadFile(flags.configFile)
	} else {
		cfg, err = config.Load(flags.dir)
	}
	if err != nil {
		return nil, err
	}
	if flags.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// newLogger returns the command logger and applies the debug toggles.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
		host.DebugMode = true
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
