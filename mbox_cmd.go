package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-extract/config"
	"github.com/dhcgn/eml-extract/runner"
)

var mboxCmd = &cobra.Command{
	Use:   "mbox [mbox file]",
	Short: "Extract attachments from every message in an mbox archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadExtractionConfig(cmd)
		if err != nil {
			return err
		}

		logger, cleanup, err := setupLogger(cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = cleanup()
		}()

		slog.SetDefault(logger)
		logger.Info("starting mbox extraction", "mbox", args[0], "destination", cfg.Destination, "dryRun", cfg.DryRun)

		r, err := runner.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("runner.New: %w", err)
		}
		defer func() {
			_ = r.Close()
		}()

		return r.RunMbox(args[0])
	},
}

func init() {
	if err := config.RegisterExtractionFlags(mboxCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register mbox flags: %v\n", err)
		os.Exit(1)
	}
	rootCmd.AddCommand(mboxCmd)
}
