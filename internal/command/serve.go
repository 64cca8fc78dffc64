package command

import (
	"github.com/spf13/cobra"

	"forecast-vintage-api/internal/app"
	"forecast-vintage-api/internal/config"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			return application.Run(cmd.Context())
		},
	}
}
