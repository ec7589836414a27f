package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/kaigouthro/nimbus/cmd/nimbus/commands"
	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "nimbus",
	Short: "OpenStack cloud gateway CLI",
	Long: `A command-line interface for an OpenStack-style cloud.

Every command works from an exported dashboard session (token plus service
catalog) and talks to the compute, block storage, networking and image
services directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.nimbus/config.yml)")
	rootCmd.PersistentFlags().StringP("session", "s", "", "session file exported from the dashboard (YAML or JSON)")
	rootCmd.PersistentFlags().StringP("token", "t", "", "auth token, overrides the session file")
	rootCmd.PersistentFlags().String("region", "", "preferred catalog region")
	rootCmd.PersistentFlags().String("interface", "public", "catalog interface (public, internal, admin)")
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Duration("timeout", constants.DefaultHTTPTimeout, "per-request timeout")
	rootCmd.PersistentFlags().String("nats-url", "", "publish accepted actions to this NATS server")
	rootCmd.PersistentFlags().String("enrichment-policy", "best-effort", "network enrichment policy (best-effort, strict)")

	// Bind flags to viper
	for _, name := range []string{
		"config", "session", "token", "region", "interface", "output",
		"verbose", "timeout", "nats-url", "enrichment-policy",
	} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewEndpointsCommand())
	rootCmd.AddCommand(commands.NewServersCommand())
	rootCmd.AddCommand(commands.NewVolumesCommand())
	rootCmd.AddCommand(commands.NewNetworksCommand())
	rootCmd.AddCommand(commands.NewFloatingIPsCommand())
	rootCmd.AddCommand(commands.NewImagesCommand())
	rootCmd.AddCommand(commands.NewFlavorsCommand())
	rootCmd.AddCommand(commands.NewKeyPairsCommand())
	rootCmd.AddCommand(commands.NewSecurityGroupsCommand())
	rootCmd.AddCommand(commands.NewQuotasCommand())
	rootCmd.AddCommand(commands.NewOverviewCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Create config directory if it doesn't exist
		configDir := filepath.Join(home, ".nimbus")
		if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		// Search config in ~/.nimbus/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("NIMBUS")
	viper.SetEnvKeyReplacer(commands.EnvKeyReplacer)
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
