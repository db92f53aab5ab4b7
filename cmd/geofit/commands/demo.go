package commands

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"geofit/pkg/geometry"
)

// Sample observations: three points mapped through a known similarity.
var (
	demoX     = []float64{1, 2, 3}
	demoY     = []float64{4, 5, 6}
	demoTruth = geometry.Similarity(2, math.Pi/6, 10, -5)
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the construct, solve and inference pipeline on sample data",
		Long: "Runs X=[1,2,3], Y=[4,5,6] through the model from --model or the config file.\n" +
			"The sample points are collinear, so only the conformal model can fit them; the\n" +
			"affine and polynomial models report a failed solve.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.SelectModelByName(modelName); err != nil {
				return err
			}
			ctx := session.Context()
			out := cmd.OutOrStdout()

			src := make([]geometry.Point2D, len(demoX))
			for i := range demoX {
				src[i] = geometry.NewPoint2D(demoX[i], demoY[i])
			}
			target := geometry.Interleave(demoTruth.ApplyAll(src))

			if st := ctx.ConstructA(demoX, demoY); !st.OK() {
				return fmt.Errorf("error constructing A: %w", st.Err())
			}
			a := ctx.Model().DesignMatrix()
			fmt.Fprintf(out, "Model: %s\n", ctx.Model().Kind())
			fmt.Fprintf(out, "Design matrix:\n%v\n", mat.Formatted(a, mat.Squeeze()))

			if st := ctx.Solve(a, target); !st.OK() {
				return fmt.Errorf("error solving for coefficients: %w", st.Err())
			}
			if st := ctx.Inference(a); !st.OK() {
				return fmt.Errorf("error performing inference: %w", st.Err())
			}

			fmt.Fprintf(out, "Coefficients:\n")
			for _, v := range ctx.Model().Parameters() {
				fmt.Fprintf(out, "%12.6f\n", v)
			}
			fmt.Fprintf(out, "Inference Result:\n")
			for _, v := range ctx.Model().Results() {
				fmt.Fprintf(out, "%12.6f\n", v)
			}
			return nil
		},
	}
}
