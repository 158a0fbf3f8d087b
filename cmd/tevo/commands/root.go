package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand creates the tevo command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tevo",
		Short: "Ticket Evolution API CLI",
		Long: `A command-line interface for the Ticket Evolution marketplace API.

Credentials are read from --token/--secret, TEVO_TOKEN/TEVO_SECRET, a local
.env file, or the OS keyring populated by 'tevo login'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetBool("no-color") {
				color.NoColor = true
			}

			return initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.tevo/config.yml)")
	flags.String("env", "", "API environment (production, sandbox)")
	flags.String("api-url", "", "API base URL, overrides --env")
	flags.StringP("token", "t", "", "API token")
	flags.String("secret", "", "API secret")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.StringP("query", "q", "", "jq expression applied to the output")
	flags.BoolP("verbose", "v", false, "log requests and responses")
	flags.String("profile", "", "credential profile (default \"default\")")
	flags.Bool("no-color", false, "disable colored output")

	bindings := map[string]string{
		"config":   "config",
		"env":      "env",
		"api_url":  "api-url",
		"token":    "token",
		"secret":   "secret",
		"output":   "output",
		"query":    "query",
		"verbose":  "verbose",
		"profile":  "profile",
		"no-color": "no-color",
	}

	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewAccountsCommand())
	rootCmd.AddCommand(NewPerformersCommand())
	rootCmd.AddCommand(NewEventsCommand())
	rootCmd.AddCommand(NewVenuesCommand())
	rootCmd.AddCommand(NewTicketGroupsCommand())
	rootCmd.AddCommand(NewRequestCommand())

	return rootCmd
}

// initConfig reads .env, the config file and TEVO_* variables into viper.
// Flags keep precedence over all of them.
func initConfig(cmd *cobra.Command) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	viper.SetEnvPrefix("TEVO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locating home directory: %w", err)
		}

		viper.AddConfigPath(filepath.Join(home, ".tevo"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("reading config file: %w", err)
	}

	if viper.GetBool("verbose") {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}

	return nil
}
