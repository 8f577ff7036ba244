package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/compose/internal/config"
	"github.com/vango-dev/compose/internal/errors"
)

func initCmd(flags *globalFlags) *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write compose.yaml (or compose.json with --format=json) with the
default settings into the directory given by --dir.

Examples:
  compose init
  compose init --format=json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			switch format {
			case "yaml":
				name = config.YAMLFileName
			case "json":
				name = config.JSONFileName
			default:
				return errors.New("E124").
					WithDetail("Unknown format " + format).
					WithSuggestion("Use --format=yaml or --format=json")
			}

			if config.Exists(flags.dir) && !force {
				return errors.New("E120").
					WithDetail("A configuration file already exists in " + flags.dir).
					WithSuggestion("Pass --force to overwrite it")
			}

			if err := os.MkdirAll(flags.dir, 0755); err != nil {
				return errors.New("E120").Wrap(err)
			}
			path := filepath.Join(flags.dir, name)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "File format: yaml or json")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}
