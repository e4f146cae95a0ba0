package main

import (
	"image"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"arcvalue/pkg/app"
	"arcvalue/pkg/ocr/tesseract"
)

var (
	captureX int
	captureY int
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the screen near the cursor, read the item name and look it up",
	Long:  "Pass --x and --y to give the cursor position; without them the region is taken from the upper middle of the screen.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cursor, err := cursorFlags(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cfg, tesseract.New(cfg.Capture.Lang))
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Coordinator.RunCaptureAndLookup(ctx, cursor)
		if werr := writeJSON(cmd.OutOrStdout(), res, true); werr != nil {
			return werr
		}
		return err
	},
}

func cursorFlags(cmd *cobra.Command) (*image.Point, error) {
	xSet, ySet := cmd.Flags().Changed("x"), cmd.Flags().Changed("y")
	if !xSet && !ySet {
		return nil, nil
	}
	if xSet != ySet {
		return nil, eris.New("capture: --x and --y must be given together")
	}
	return &image.Point{X: captureX, Y: captureY}, nil
}

func init() {
	captureCmd.Flags().IntVar(&captureX, "x", 0, "cursor x in screen pixels")
	captureCmd.Flags().IntVar(&captureY, "y", 0, "cursor y in screen pixels")
	rootCmd.AddCommand(captureCmd)
}
