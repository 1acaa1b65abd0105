package main

import (
	"fmt"

	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/spf13/cobra"
)

func newCreateUserCmd(opts *globalOptions) *cobra.Command {
	var (
		username  string
		password  string
		email     string
		dateBirth string
		contact   bool
		share     bool
	)

	cmd := &cobra.Command{
		Use:     "createuser",
		Short:   "Register an account",
		Example: `  softdeskctl createuser --username alice --password 's3cret-pass' --date-birth 1990-04-12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open()
			if err != nil {
				return err
			}

			in := &services.UserInput{
				Username:        &username,
				Password:        &password,
				CanBeContacted:  &contact,
				CanDataBeShared: &share,
			}
			if email != "" {
				in.Email = &email
			}
			if dateBirth != "" {
				d, err := models.ParseDate(dateBirth)
				if err != nil {
					return fmt.Errorf("invalid --date-birth: %w", err)
				}
				in.DateBirth = &d
			}

			users := services.NewUserService(db, authz.NewGate(authz.NewDBResolver(db), nil))
			user, err := users.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] created user %q (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&dateBirth, "date-birth", "", "Birth date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&contact, "can-be-contacted", false, "Consent to be contacted")
	cmd.Flags().BoolVar(&share, "can-data-be-shared", false, "Consent to data sharing")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
