package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/streamdate/sapi/internal/config"
)

var Version = "dev"

func main() {
	var rootCmd = &cobra.Command{
		Use:   "sapi",
		Short: "Signaling/Session API service",
		Long: `sapi - the signaling and session API service.

Coordinates live-stream, visit and preview sessions against MySQL, a
redis ring and the OpenVidu media server, and hands ICE servers to
clients for NAT traversal.`,
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.Version = Version

	rootCmd.AddCommand(RunServeCommand())
	rootCmd.AddCommand(RunVersionCommand(Version))
	rootCmd.AddCommand(RunGenerateConfigCommand())
	rootCmd.AddCommand(RunCheckConfigCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func RunVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sapi",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func RunGenerateConfigCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default configuration file",
		Long: `Generate a fully commented default configuration file without
starting the server.

If no --config-dir is specified, uses the OS-specific default location.
You can specify either a directory path or a direct .toml file path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := resolveGeneratePath(configDir)

			if _, err := os.Stat(configPath); err == nil {
				cmd.Printf("Configuration file already exists at: %s\n", configPath)
				cmd.Println("Skipping generation to avoid overwriting existing configuration.")
				return nil
			}

			if err := config.WriteDefaultConfig(configPath); err != nil {
				return fmt.Errorf("failed to create configuration file: %w", err)
			}

			cmd.Printf("Configuration file created successfully at: %s\n", configPath)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory or file path (defaults to OS-specific location)")

	return command
}

func RunCheckConfigCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "check-config",
		Short: "Load and validate the configuration",
		Long: `Load the configuration with the usual priority (defaults, file,
SAPI_* environment) and validate it. Prints the redacted effective
configuration and exits non-zero if it is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(configDir)
			if err != nil {
				return err
			}

			cmd.Printf("Configuration at %s is valid.\n", cfg.ConfigPath())
			cmd.Println(cfg.Current().String())
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory or file path (defaults to OS-specific location)")

	return command
}
