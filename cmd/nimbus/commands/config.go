package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file. Keys match the global flag
// names so viper resolves flag, environment and file in one place.
type Config struct {
	Session          string `json:"session,omitempty"           yaml:"session,omitempty"`
	Region           string `json:"region,omitempty"            yaml:"region,omitempty"`
	Interface        string `json:"interface,omitempty"         yaml:"interface,omitempty"`
	Output           string `json:"output,omitempty"            yaml:"output,omitempty"`
	Timeout          string `json:"timeout,omitempty"           yaml:"timeout,omitempty"`
	NATSURL          string `json:"nats-url,omitempty"          yaml:"nats-url,omitempty"`
	EnrichmentPolicy string `json:"enrichment-policy,omitempty" yaml:"enrichment-policy,omitempty"`
	Verbose          bool   `json:"verbose,omitempty"           yaml:"verbose,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the nimbus configuration file",
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
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			renderer := &OutputRenderer[*Config]{RenderTable: func(c *Config) error {
				table := newTable("Key", "Value")
				_ = table.Append("session", orNone(c.Session))
				_ = table.Append("region", orNone(c.Region))
				_ = table.Append("interface", orNone(c.Interface))
				_ = table.Append("output", orNone(c.Output))
				_ = table.Append("timeout", orNone(c.Timeout))
				_ = table.Append("nats-url", orNone(c.NATSURL))
				_ = table.Append("enrichment-policy", orNone(c.EnrichmentPolicy))
				_ = table.Append("verbose", fmt.Sprint(c.Verbose))

				return renderTable(table)
			}}

			return renderer.Render(config)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(output, "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(output, "Unset %s\n", args[0])

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		Session:          viper.GetString("session"),
		Region:           viper.GetString("region"),
		Interface:        viper.GetString("interface"),
		Output:           viper.GetString("output"),
		Timeout:          viper.GetString("timeout"),
		NATSURL:          viper.GetString("nats-url"),
		EnrichmentPolicy: viper.GetString("enrichment-policy"),
		Verbose:          viper.GetBool("verbose"),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "session":
		config.Session = value
	case "region":
		config.Region = value
	case "interface":
		config.Interface = value
	case "output":
		config.Output = value
	case "timeout":
		if value != "" {
			_, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid timeout %q: %w", value, err)
			}
		}

		config.Timeout = value
	case "nats-url":
		config.NATSURL = value
	case "enrichment-policy":
		config.EnrichmentPolicy = value
	case "verbose":
		config.Verbose = value == constants.BooleanTrue
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".nimbus")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
