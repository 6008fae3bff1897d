package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/camstitch/internal/check"
	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/display"
	"github.com/backmassage/camstitch/internal/logging"
	"github.com/backmassage/camstitch/internal/pipeline"
)

// errReported marks a failure already written through the logger, so main
// only sets the exit status.
var errReported = errors.New("error already reported")

// commandContext carries the bound flags shared by every command.
type commandContext struct {
	flags config.Flags
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "camstitch [input_dir]",
		Short: "Join numbered screen recordings and overlay a face-cam video",
		Long: "camstitch joins the numbered clips in input_dir (1.mov, 2.mov, ...) in numeric\n" +
			"order, conditions the face video's audio, and overlays the face video in a\n" +
			"corner of the joined recording.",
		Version:       version + " (" + commit + ")",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, args)
		},
	}

	ctx.flags.Bind(rootCmd.PersistentFlags(), config.DefaultConfig())

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newClipsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	return rootCmd
}

// loadConfig layers defaults, the TOML file, changed flags and the
// positional input directory, then validates the result.
func (c *commandContext) loadConfig(cmd *cobra.Command, args []string, checkOnly bool) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	path, loaded, err := config.LoadFile(&cfg, c.flags.ConfigPath)
	if err != nil {
		return nil, "", err
	}
	if !loaded {
		path = ""
	}
	c.flags.Apply(cmd.Flags(), &cfg)
	if err := config.ApplyPositional(&cfg, args); err != nil {
		return nil, "", err
	}
	cfg.CheckOnly = checkOnly
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

// setup loads the configuration and opens the logger. The caller must
// Close the logger.
func (c *commandContext) setup(cmd *cobra.Command, args []string, checkOnly bool) (*config.Config, *logging.Logger, error) {
	cfg, path, err := c.loadConfig(cmd, args, checkOnly)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		log.Debug(cfg.Logging.Verbose, "Config: %s", path)
	}
	return cfg, log, nil
}

func (c *commandContext) runPipeline(cmd *cobra.Command, args []string) error {
	cfg, log, err := c.setup(cmd, args, false)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner(os.Stdout)
	log.Info("=== camstitch v%s (%s) ===", version, commit)
	log.Info("Clips:  %s", cfg.Paths.InputDir)
	log.Info("Face:   %s", cfg.Paths.FaceVideo)
	log.Info("Output: %s", cfg.Paths.OutputPath)
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	ctx := cmd.Context()

	// Fail fast if ffmpeg, ffprobe or a required encoder/filter is missing.
	if err := check.CheckDeps(ctx, cfg); err != nil {
		log.Error("%v", err)
		log.Info("Run 'camstitch check' for details")
		return errReported
	}

	if _, err := pipeline.Run(ctx, cfg, log); err != nil {
		if ctx.Err() != nil {
			log.Warn("Interrupted; partial output removed")
			return errReported
		}
		log.Error("%v", err)
		return errReported
	}
	return nil
}
