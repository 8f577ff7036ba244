package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/compose/internal/config"
	"github.com/vango-dev/compose/internal/errors"
	"github.com/vango-dev/compose/internal/examples"
	"github.com/vango-dev/compose/pkg/compose"
	"github.com/vango-dev/compose/pkg/host"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		clicks     int
		components []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Mount the components and simulate clicks",
		Long: `Mount the example components on a scheduler and click each one.

After every click the scheduler is flushed and the re-rendered label is
printed. Watcher output of the watch component goes to the log (stderr).

Examples:
  compose run
  compose run --clicks=7 --component=watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("clicks") {
				cfg.Demo.Clicks = clicks
			}
			if len(components) > 0 {
				cfg.Demo.Components = components
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Debug)
			return runDemo(cmd, cfg, logger)
		},
	}

	cmd.Flags().IntVarP(&clicks, "clicks", "n", 0, "Clicks per component (default from config)")
	cmd.Flags().StringSliceVar(&components, "component", nil, "Components to run (default from config)")

	return cmd
}

// runDemo mounts the configured components and clicks each one in turn.
func runDemo(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Recover(r)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	sched := host.NewScheduler(
		host.WithLogger(logger),
		host.WithMaxPasses(cfg.Host.MaxPasses),
	)

	for _, name := range cfg.Demo.Components {
		ex, ok := examples.Lookup(name, logger)
		if !ok {
			return errors.New("E121").WithDetail("Unknown component " + name)
		}
		if err := clickThrough(ctx, out, sched, ex, cfg.Demo.Clicks, clickAction, logger); err != nil {
			return err
		}
	}

	return nil
}

// clickAction is the action each simulated click dispatches.
const clickAction = "increment"

// clickThrough mounts ex, dispatches action clicks times with a flush after
// each, and unmounts it again on every return path.
func clickThrough(ctx context.Context, out io.Writer, sched *host.Scheduler, ex examples.Example, clicks int, action string, logger *slog.Logger) error {
	inst := examples.Mount(ctx, sched, ex, compose.WithLogger(logger))
	defer inst.Unmount()

	info(out, "%s: %s", ex.Title, inst.Label())
	for i := 0; i < clicks; i++ {
		if err := inst.Dispatch(action); err != nil {
			return errors.FromError(err, "E162")
		}
		if _, err := sched.Flush(ctx); err != nil {
			return errors.New("E105").Wrap(err)
		}
		info(out, "%s: %s", ex.Title, inst.Label())
	}

	success(out, "%s: %d clicks, %d renders", ex.Title, clicks, inst.Component().Renders())
	return nil
}
