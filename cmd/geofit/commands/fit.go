package commands

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"geofit/internal/app"
	"geofit/internal/evaluate"
	"geofit/internal/gcp"
)

func fitCmd() *cobra.Command {
	var correction, norm, split string

	cmd := &cobra.Command{
		Use:   "fit <points-file>",
		Short: "Fit a model to control points and report residuals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("correct") {
				cfg.Correction = correction
			}
			if cmd.Flags().Changed("norm") {
				cfg.Norm = norm
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if split != "" {
				line, err := app.ParseLine(split)
				if err != nil {
					return err
				}
				parts, err := fitPiecewiseFromFile(args[0], line)
				if err != nil {
					return err
				}
				for _, p := range parts {
					fmt.Fprintf(out, "--- side %s: %d points ---\n", p.Name, len(p.Points))
					if p.Err != nil {
						fmt.Fprintf(out, "not fitted: %v\n", p.Err)
						continue
					}
					printResult(out, p.Result, cfg.Precision)
				}
				return nil
			}

			res, err := fitFromFile(args[0])
			if err != nil {
				return err
			}
			printResult(out, res, cfg.Precision)
			return nil
		},
	}

	cmd.Flags().StringVar(&correction, "correct", "", "interpolate GCP residuals onto ICPs: none, multiquadric or ldw")
	cmd.Flags().StringVar(&norm, "norm", "", "LDW distance norm: 1, 2 or inf")
	cmd.Flags().StringVar(&split, "split", "", "fit each side of the image line x1,y1,x2,y2 separately")
	return cmd
}

func fitFromFile(path string) (*app.Result, error) {
	if err := session.LoadPoints(path); err != nil {
		return nil, err
	}
	if err := session.SelectModelByName(modelName); err != nil {
		return nil, err
	}
	return session.Fit()
}

func fitPiecewiseFromFile(path string, line app.Line) ([]app.Part, error) {
	if err := session.LoadPoints(path); err != nil {
		return nil, err
	}
	if err := session.SelectModelByName(modelName); err != nil {
		return nil, err
	}
	return session.FitPiecewise(line)
}

func printResult(w io.Writer, res *app.Result, prec int) {
	fmt.Fprintf(w, "=== %s fit: %d GCPs, %d ICPs ===\n", res.Kind, len(res.GCPs), len(res.ICPs))

	fmt.Fprintf(w, "Parameters:\n")
	for i, v := range res.Parameters {
		fmt.Fprintf(w, "  p%-2d = %.*f\n", i, prec, v)
	}
	if res.HasAffine {
		t := res.Transform
		sx, sy := t.Scale()
		fmt.Fprintf(w, "Rotation: %.4f°\n", t.Rotation()*180/math.Pi)
		fmt.Fprintf(w, "Scale: %.6f x %.6f\n", sx, sy)
		fmt.Fprintf(w, "Translation: (%.*f, %.*f)\n", prec, t.TX, prec, t.TY)
	}

	fmt.Fprintf(w, "\nGCP residuals:\n")
	printReport(w, res.GCPs, res.Fit, prec)
	if res.Check != nil {
		fmt.Fprintf(w, "\nICP residuals:\n")
		printReport(w, res.ICPs, *res.Check, prec)
	}
	if res.Corrected != nil {
		fmt.Fprintf(w, "\nICP residuals after %s correction:\n", res.Correction)
		printReport(w, res.ICPs, *res.Corrected, prec)
	}
}

func printReport(w io.Writer, points []gcp.Point, r evaluate.Report, prec int) {
	for i, p := range points {
		e := r.Residuals[i]
		fmt.Fprintf(w, "  %-8s dX=%+.*f dY=%+.*f  err=%.*f\n", p.ID, prec, e.DX, prec, e.DY, prec, e.Distance)
	}
	fmt.Fprintf(w, "  RMSE (X): %.*f\n", prec, r.RMSEX)
	fmt.Fprintf(w, "  RMSE (Y): %.*f\n", prec, r.RMSEY)
	fmt.Fprintf(w, "  RMSE:     %.*f\n", prec, r.RMSE)
	fmt.Fprintf(w, "  Max:      %.*f (%s)\n", prec, r.Max, points[r.MaxIndex].ID)
}
