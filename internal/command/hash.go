package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"forecast-vintage-api/internal/service"
)

func hashCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash KEY",
		Short: "Print the bcrypt hash of an auth key",
		Long: "Prints a bcrypt hash suitable for the auth_key column, for inserting the\n" +
			"first admin credential by hand.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.NewPasswordHasher(cost, 1).Hash(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().IntVar(&cost, "cost", service.DefaultBcryptCost, "bcrypt cost factor")

	return cmd
}
