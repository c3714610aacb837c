package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"hardsub/internal/ass"
	"hardsub/internal/media"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "probe <video>",
		Short: "Show the dimensions, duration and stream details of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.shared()
			if err != nil {
				return err
			}
			info, err := newDecoder(cfg).Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, probeReport{
					Video:     args[0],
					Width:     info.Width,
					Height:    info.Height,
					Duration:  info.Duration,
					FrameRate: info.FrameRate,
					Codec:     info.Codec,
					SizeBytes: info.SizeBytes,
					BitRate:   info.BitRate,
				})
			}
			printTable(cmd.OutOrStdout(), []string{"Field", "Value"}, probeRows(info), nil)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the probe result as JSON")
	return cmd
}

type probeReport struct {
	Video     string  `json:"video"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Duration  float64 `json:"duration_seconds"`
	FrameRate float64 `json:"frame_rate"`
	Codec     string  `json:"codec,omitempty"`
	SizeBytes int64   `json:"size_bytes"`
	BitRate   int64   `json:"bit_rate"`
}

func probeRows(info media.VideoInfo) [][]string {
	rows := [][]string{
		{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{"Duration", durationLabel(info.Duration)},
	}
	if info.FrameRate > 0 {
		rows = append(rows, []string{"Frame rate", strconv.FormatFloat(info.FrameRate, 'f', 3, 64) + " fps"})
	}
	if info.Codec != "" {
		rows = append(rows, []string{"Codec", info.Codec})
	}
	if info.SizeBytes > 0 {
		rows = append(rows, []string{"Size", humanize.IBytes(uint64(info.SizeBytes))})
	}
	if info.BitRate > 0 {
		rows = append(rows, []string{"Bit rate", humanize.SI(float64(info.BitRate), "bit/s")})
	}
	return rows
}

func durationLabel(seconds float64) string {
	if seconds <= 0 {
		return "unknown"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%s (%s)", ass.FormatTimestamp(seconds), d)
}
