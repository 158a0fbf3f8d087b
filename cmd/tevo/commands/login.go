package commands

import (
	"fmt"

	"github.com/fivetwenty-io/tevo/internal/auth"
	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func currentProfile() string {
	if profile := viper.GetString("profile"); profile != "" {
		return profile
	}

	return constants.DefaultProfile
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store API credentials",
		Long: `Store an API token and secret in the OS keyring under the current profile.

Missing values are prompted for; the secret is read without echo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := auth.Credentials{
				Token:  viper.GetString("token"),
				Secret: viper.GetString("secret"),
			}

			var err error

			if creds.Token == "" {
				creds.Token, err = readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "API token: ")
				if err != nil {
					return err
				}
			}

			if creds.Secret == "" {
				creds.Secret, err = readSecret("API secret: ")
				if err != nil {
					return err
				}
			}

			if verify {
				viper.Set("token", creds.Token)
				viper.Set("secret", creds.Secret)

				err = verifyCredentials(cmd)
				if err != nil {
					return fmt.Errorf("verifying credentials: %w", err)
				}
			}

			store, err := openStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}

			profile := currentProfile()

			err = store.Save(profile, creds)
			if err != nil {
				return fmt.Errorf("saving credentials: %w", err)
			}

			success(cmd.OutOrStdout(), "Credentials saved for profile %q", profile)

			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check the credentials against the API before saving")

	return cmd
}

func verifyCredentials(cmd *cobra.Command) error {
	conn, err := newConnection(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = conn.Close() }()

	_, err = conn.Accounts().List(cmd.Context(), tevo.NewQueryParams().WithPerPage(1))

	return err
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored API credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}

			profile := currentProfile()

			err = store.Delete(profile)
			if err != nil {
				return fmt.Errorf("removing credentials: %w", err)
			}

			success(cmd.OutOrStdout(), "Logged out of profile %q", profile)

			return nil
		},
	}
}
