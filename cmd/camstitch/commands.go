package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/camstitch/internal/check"
	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/display"
	"github.com/backmassage/camstitch/internal/pipeline"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report ffmpeg, ffprobe, encoder and filter availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.setup(cmd, nil, true)
			if err != nil {
				return err
			}
			defer log.Close()

			display.PrintBanner(os.Stdout)
			if !check.RunCheck(cmd.Context(), cfg, log) {
				return errReported
			}
			return nil
		},
	}
}

func newClipsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clips [input_dir]",
		Short: "List the clips in playback order and the join strategy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.setup(cmd, args, true)
			if err != nil {
				return err
			}
			defer log.Close()

			if err := pipeline.ListClips(cmd.Context(), cfg, log); err != nil {
				log.Error("%v", err)
				return errReported
			}
			return nil
		},
	}
}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: "Print the configuration after defaults, the config file and flags are applied.\n" +
			"Redirect the output to " + config.DefaultFileName + " to start a config file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.loadConfig(cmd, nil, true)
			if err != nil {
				return err
			}
			text, err := config.EncodeTOML(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}
