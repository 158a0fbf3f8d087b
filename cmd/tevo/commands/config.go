package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file. The API secret is never
// written here; it lives in the credential store.
type Config struct {
	Environment string  `json:"env,omitempty"        yaml:"env,omitempty"`
	APIURL      string  `json:"api_url,omitempty"    yaml:"api_url,omitempty"`
	Token       string  `json:"token,omitempty"      yaml:"token,omitempty"`
	Profile     string  `json:"profile,omitempty"    yaml:"profile,omitempty"`
	Output      string  `json:"output,omitempty"     yaml:"output,omitempty"`
	RateLimit   float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
	Cache       string  `json:"cache,omitempty"      yaml:"cache,omitempty"`
	RedisAddr   string  `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	NATSURL     string  `json:"nats_url,omitempty"   yaml:"nats_url,omitempty"`
}

type configField struct {
	get func(*Config) string
	set func(*Config, string) error
}

var configFields = map[string]configField{
	"env": {
		get: func(c *Config) string { return c.Environment },
		set: func(c *Config, v string) error {
			if v != "" && v != constants.EnvironmentProduction && v != constants.EnvironmentSandbox {
				return fmt.Errorf("%w: %q", ErrInvalidEnvironment, v)
			}

			c.Environment = v

			return nil
		},
	},
	"api_url": {
		get: func(c *Config) string { return c.APIURL },
		set: func(c *Config, v string) error { c.APIURL = v; return nil },
	},
	"token": {
		get: func(c *Config) string { return c.Token },
		set: func(c *Config, v string) error { c.Token = v; return nil },
	},
	"profile": {
		get: func(c *Config) string { return c.Profile },
		set: func(c *Config, v string) error { c.Profile = v; return nil },
	},
	"output": {
		get: func(c *Config) string { return c.Output },
		set: func(c *Config, v string) error {
			switch v {
			case "", constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
				c.Output = v

				return nil
			default:
				return fmt.Errorf("%w: %s", ErrUnsupportedOutput, v)
			}
		},
	},
	"rate_limit": {
		get: func(c *Config) string {
			if c.RateLimit == 0 {
				return ""
			}

			return strconv.FormatFloat(c.RateLimit, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				c.RateLimit = 0

				return nil
			}

			limit, err := strconv.ParseFloat(v, 64)
			if err != nil || limit < 0 {
				return fmt.Errorf("%w: rate_limit must be a non-negative number", ErrInvalidKeyValue)
			}

			c.RateLimit = limit

			return nil
		},
	},
	"cache": {
		get: func(c *Config) string { return c.Cache },
		set: func(c *Config, v string) error {
			_, err := tevo.ParseCacheType(v)
			if err != nil {
				return fmt.Errorf("invalid cache type: %w", err)
			}

			c.Cache = v

			return nil
		},
	},
	"redis_addr": {
		get: func(c *Config) string { return c.RedisAddr },
		set: func(c *Config, v string) error { c.RedisAddr = v; return nil },
	},
	"nats_url": {
		get: func(c *Config) string { return c.NATSURL },
		set: func(c *Config, v string) error { c.NATSURL = v; return nil },
	},
}

// ConfigKeys returns the settable keys in sorted order.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// ConfigPath returns the configuration file in use.
func ConfigPath() (string, error) {
	if path := viper.GetString("config"); path != "" {
		return path, nil
	}

	if path := viper.ConfigFileUsed(); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}

	return filepath.Join(home, ".tevo", "config.yml"), nil
}

func loadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own flag or home directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}

		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return config, nil
}

func saveConfig(config *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the tevo configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if config.Token != "" {
				config.Token = Masked
			}

			rows := make([][]string, 0, len(configFields))
			for _, key := range ConfigKeys() {
				rows = append(rows, []string{key, orNA(configFields[key].get(config))})
			}

			return render(cmd, config, &table{headers: []string{"Key", "Value"}, rows: rows})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. The API secret is stored with 'tevo login', never in the file.",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			field, ok := configFields[key]
			if !ok {
				return fmt.Errorf("%w: %s (valid keys: %v)", ErrUnknownConfigKey, key, ConfigKeys())
			}

			config, err := loadConfig()
			if err != nil {
				return err
			}

			err = field.set(config, value)
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Set %s", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := configFields[args[0]]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownConfigKey, args[0])
			}

			config, err := loadConfig()
			if err != nil {
				return err
			}

			err = field.set(config, "")
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Unset %s", args[0])

			return nil
		},
	}
}
