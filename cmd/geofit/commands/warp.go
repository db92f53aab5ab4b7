package commands

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"geofit/internal/warp"
)

func warpCmd() *cobra.Command {
	var gsd float64
	var interpName string
	var worldFile bool

	cmd := &cobra.Command{
		Use:   "warp <points-file> <image> <out.png>",
		Short: "Resample an image through the transform fitted to control points",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interpName == "" {
				interpName = cfg.Interpolation
			}
			interp, err := warp.Interpolation(interpName)
			if err != nil {
				return err
			}

			res, err := fitFromFile(args[0])
			if err != nil {
				return err
			}
			if !res.HasAffine {
				return fmt.Errorf("%s model cannot be applied as an affine warp", res.Kind)
			}

			img, err := warp.Load(args[1])
			if err != nil {
				return err
			}
			grid, err := warp.GridFor(img.Bounds(), res.Transform, gsd)
			if err != nil {
				return err
			}

			out, err := warp.Affine(img, res.Transform, grid, interp)
			if err != nil {
				return err
			}
			if err := warp.SavePNG(args[2], out); err != nil {
				return err
			}
			if worldFile {
				wf := strings.TrimSuffix(args[2], filepath.Ext(args[2])) + ".pgw"
				if err := warp.WriteWorldFile(wf, grid); err != nil {
					return err
				}
			}
			log.Printf("Wrote %dx%d image to %s, origin (%.3f, %.3f), GSD %g (GCP RMSE %.4f)",
				grid.Width, grid.Height, args[2], grid.MinX, grid.MaxY, grid.GSD, res.Fit.RMSE)
			return nil
		},
	}

	cmd.Flags().Float64Var(&gsd, "gsd", 0, "ground units per output pixel (default: keep the source pixel area)")
	cmd.Flags().BoolVar(&worldFile, "world-file", false, "write a .pgw world file next to the output")
	cmd.Flags().StringVar(&interpName, "interp", "", "interpolation: nearest, bilinear or catmullrom")
	return cmd
}
