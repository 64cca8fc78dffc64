// Package command contains the CLI command constructors.
package command

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"forecast-vintage-api/internal/config"
	"forecast-vintage-api/internal/logger"
)

// RootCommand instantiates the root command, with all sub-commands bound.
// Without a sub-command it serves the API.
func RootCommand() *cobra.Command {
	serve := serveCommand()

	cmd := &cobra.Command{
		Use:          "forecast-vintage-api [command] [flags]",
		Short:        "Authenticated API for forecast vintages",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			format, level := config.LoadLogging()
			slog.SetDefault(logger.New(os.Stderr, format, level))
		},
		RunE: serve.RunE,
	}

	cmd.AddCommand(
		serve,
		hashCommand(),
		userCommand(),
	)

	return cmd
}
