package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"hardsub/internal/config"
	"hardsub/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the hardsub configuration file",
	}
	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigShowCommand(ctx),
		newConfigValidateCommand(ctx),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		pathFlag  string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(pathFlag)
			if err != nil {
				return err
			}
			if err := refuseExisting(target, overwrite); err != nil {
				return err
			}
			if err := config.CreateSample(target); err != nil {
				return services.Wrap(services.ErrIO, "config", "init", "write sample", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set [ocr] command (or export HARDSUB_OCR_COMMAND) to your recognizer before running hardsub.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Where to write the file (default: the standard config location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(pathFlag string) (string, error) {
	raw := strings.TrimSpace(pathFlag)
	if raw == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "config", "init", "default path", err)
		}
		return p, nil
	}
	p, err := config.ExpandPath(raw)
	if err != nil {
		return "", services.Wrap(services.ErrInvalidParameter, "config", "init", "expand --path", err)
	}
	return p, nil
}

func refuseExisting(target string, overwrite bool) error {
	if overwrite {
		return nil
	}
	_, err := os.Stat(target)
	switch {
	case err == nil:
		return services.Wrap(services.ErrInvalidParameter, "config", "init",
			target+" exists; pass --overwrite to replace it", nil)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return services.Wrap(services.ErrIO, "config", "init", "stat target", err)
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			data, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", ctx.configPath)
			_, err = out.Write(data)
			return err
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report the values a run would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found, defaults used)"
			}
			printTable(out, []string{"Setting", "Value"}, configSummaryRows(cfg, source), nil)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func configSummaryRows(cfg *config.Config, source string) [][]string {
	roi := "whole frame"
	if !cfg.ROI.Empty() {
		roi = fmt.Sprintf("%d,%d,%d,%d", cfg.ROI.X, cfg.ROI.Y, cfg.ROI.Width, cfg.ROI.Height)
	}
	cache := "disabled"
	if cfg.OCR.CacheEnabled {
		cache = cfg.CachePath()
	}
	float := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return [][]string{
		{"config", source},
		{"sample fps", float(cfg.Pipeline.SampleFPS)},
		{"change threshold", float(cfg.Pipeline.ChangeThreshold)},
		{"hold gap", float(cfg.Pipeline.HoldGap) + "s"},
		{"fill gaps", float(cfg.Pipeline.FillGaps) + "s"},
		{"roi", roi},
		{"ocr engine", cfg.OCR.Engine + " (" + cfg.OCR.Command + ")"},
		{"ocr cache", cache},
		{"scratch dir", cfg.Paths.ScratchDir},
	}
}
