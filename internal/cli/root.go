package cli

import (
	"fmt"

	"github.com/eleven-am/spycat/internal/logger"
	"github.com/spf13/cobra"
)

// Global configuration variables
var (
	configFile  string
	agencyCfg   *Config
	databaseURL string
	debug       bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agency",
		Short: "Spy Cat Agency - mission control backend",
		Long: `The Spy Cat Agency backend manages spy cats, their missions,
targets and field notes behind a JSON HTTP API.

Commands:
- serve the HTTP API
- diff and apply the database schema
- promote a cat to staff`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(configFile)
			if err != nil {
				return err
			}
			if databaseURL != "" {
				config.Database.URL = databaseURL
			}
			agencyCfg = config

			if err := logger.Init(config.LoggerConfig(debug)); err != nil {
				return fmt.Errorf("failed to initialise logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: agency.yaml or $AGENCY_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
