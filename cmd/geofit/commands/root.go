package commands

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"geofit/internal/app"
	"geofit/internal/config"
	"geofit/internal/version"
)

var (
	configPath string
	verbose    bool
	modelName  string
	degree     int

	cfg     *config.Config
	session *app.Session
)

// Execute runs the geofit command tree against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "geofit",
		Short:        "Fit 2D coordinate transformations to control points",
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Verbose = verbose
			}
			if cmd.Flags().Changed("degree") {
				cfg.Degree = degree
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if modelName == "" {
				modelName = cfg.Model
			}

			var logger *log.Logger
			if cfg.Verbose {
				logger = log.New(os.Stderr, "geofit: ", log.LstdFlags)
			}
			session = app.NewSession(cfg, logger)
			if logger != nil {
				session.On(app.EventPointsLoaded, func(data interface{}) {
					logger.Printf("loaded %d control points", len(session.Points))
				})
			}
			session.On(app.EventWarning, func(data interface{}) {
				log.Printf("warning: %v", data)
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace every model call")
	root.PersistentFlags().StringVarP(&modelName, "model", "m", "", "transform model: affine, conformal or polynomial")
	root.PersistentFlags().IntVar(&degree, "degree", 2, "polynomial degree (1-3)")

	root.AddCommand(demoCmd(), fitCmd(), warpCmd())
	return root
}
