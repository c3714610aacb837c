package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hardsub/internal/fileutil"
	"hardsub/internal/media/frames"
	"hardsub/internal/region"
	"hardsub/internal/services"
)

func newFrameCommand(ctx *commandContext) *cobra.Command {
	var at float64
	var output string

	cmd := &cobra.Command{
		Use:   "frame <video>",
		Short: "Save a single preview frame for choosing the subtitle region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.shared()
			if err != nil {
				return err
			}
			dest := strings.TrimSpace(output)
			if dest == "" {
				dest = previewPath(args[0], at, "frame")
			}
			// Decode into scratch so a failed extraction never leaves a
			// partial PNG at the destination.
			scratch, err := frames.NewScratch(cfg.Paths.ScratchDir, false, logger)
			if err != nil {
				return err
			}
			defer scratch.Release()
			framePath := filepath.Join(scratch.Dir(), "frame.png")
			if err := newDecoder(cfg).ExtractFrame(cmd.Context(), args[0], at, framePath); err != nil {
				return err
			}
			if err := fileutil.CopyFile(framePath, dest); err != nil {
				return services.Wrap(services.ErrIO, "frame", "write frame", dest, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote frame at %ss to %s\n", formatSeconds(at), dest)
			return nil
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "Timestamp in seconds")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Destination PNG (default <video>_frame_<at>.png)")
	return cmd
}

func newCropCommand(ctx *commandContext) *cobra.Command {
	var at float64
	var roiFlag string
	var output string

	cmd := &cobra.Command{
		Use:   "crop <video>",
		Short: "Save the subtitle region of one frame to check the ROI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.shared()
			if err != nil {
				return err
			}
			roi, given, err := resolveROI(roiFlag, cfg)
			if err != nil {
				return err
			}
			if !given || roi.Empty() {
				return services.Wrap(services.ErrInvalidParameter, "validate", "roi", "crop needs --roi or a stored ROI", nil)
			}

			scratch, err := frames.NewScratch(cfg.Paths.ScratchDir, false, logger)
			if err != nil {
				return err
			}
			defer scratch.Release()

			framePath := filepath.Join(scratch.Dir(), "frame.png")
			if err := newDecoder(cfg).ExtractFrame(cmd.Context(), args[0], at, framePath); err != nil {
				return err
			}
			img, err := decodePNG(framePath)
			if err != nil {
				return services.Wrap(services.ErrMedia, "crop", "decode frame", framePath, err)
			}
			crop, _ := region.Crop(img, roi)
			clamped := region.FromRectangle(region.Clamp(roi, img.Bounds()))
			if region.IsEmpty(crop) {
				b := img.Bounds()
				return services.Wrap(services.ErrInvalidParameter, "crop", "roi",
					fmt.Sprintf("%s lies outside the %dx%d frame", roi, b.Dx(), b.Dy()), nil)
			}

			dest := strings.TrimSpace(output)
			if dest == "" {
				dest = previewPath(args[0], at, "crop")
			}
			if err := fileutil.WriteAtomic(dest, 0o644, func(w io.Writer) error {
				return png.Encode(w, crop)
			}); err != nil {
				return services.Wrap(services.ErrIO, "crop", "write crop", dest, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d crop (%s) at %ss to %s\n",
				clamped.Width, clamped.Height, clamped, formatSeconds(at), dest)
			return nil
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "Timestamp in seconds")
	cmd.Flags().StringVar(&roiFlag, "roi", "", "Subtitle region as x,y,width,height or WxH+X+Y (default: stored ROI)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Destination PNG (default <video>_crop_<at>.png)")
	return cmd
}

func previewPath(video string, at float64, kind string) string {
	base := strings.TrimSuffix(video, filepath.Ext(video))
	return fmt.Sprintf("%s_%s_%s.png", base, kind, formatSeconds(at))
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
