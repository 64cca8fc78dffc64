package command

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"forecast-vintage-api/internal/app"
	"forecast-vintage-api/internal/config"
	"forecast-vintage-api/internal/model"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Credential commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	var (
		role     string
		authKey  string
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create credential",
		Long: "Creates a credential for NAME. When no auth key is given one is generated;\n" +
			"the key is printed once and cannot be recovered later.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := app.OpenDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			credentials, _, err := app.NewCredentialService(cfg, db)
			if err != nil {
				return err
			}

			active := !inactive
			created, err := credentials.Create(cmd.Context(), model.AuditActor{Username: "cli"}, model.NewCredential{
				Username: args[0],
				AuthKey:  authKey,
				Role:     role,
				IsActive: &active,
			})
			if err != nil {
				return err
			}

			slog.InfoContext(cmd.Context(), "created credential", slog.String("username", args[0]))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), created.AuthKey)
			return err
		},
	}

	cmd.Flags().StringVar(&role, "role", model.RoleBusiness, "auth_level of the credential")
	cmd.Flags().StringVar(&authKey, "auth-key", "", "auth key to store; generated when empty")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the credential deactivated")

	return cmd
}
