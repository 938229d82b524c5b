package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cenniki/pricelist-service/config"
	"github.com/cenniki/pricelist-service/internal/app"
)

var (
	cfgFile      string
	outputFormat string
	cfg          *config.Config
	logger       *zerolog.Logger
	services     *app.App
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pricelist",
	Short: "Pricelist CLI - scheduled price changes for producer catalogs",
	Long: `A CLI tool for diffing producer price catalogs, scheduling change-sets,
applying due changes and exporting change-set reports. It uses the same
configuration and storage as the pricelist service.`,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")
}

// needsServices lists commands that work on the configured stores
var needsServices = map[string]bool{
	"list":       true,
	"due":        true,
	"run-due":    true,
	"apply":      true,
	"reschedule": true,
	"delete":     true,
	"import":     true,
	"export":     true,
	"producers":  true,
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		if needsServices[cmd.Name()] {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = nil
	}

	logging := config.LoggingConfig{Level: "info", Format: "console"}
	if cfg != nil {
		logging = cfg.Logging
		// CLI output goes to stdout; logs stay on stderr in console format
		logging.Format = "console"
	}
	logger = app.NewLogger(logging, os.Stderr)

	if !needsServices[cmd.Name()] {
		return nil
	}
	services, err = app.New(cmd.Context(), cfg, logger, "cli")
	if err != nil {
		return fmt.Errorf("failed to initialise services: %w", err)
	}
	return nil
}

func persistentPostRun(cmd *cobra.Command, args []string) error {
	if services == nil {
		return nil
	}
	return services.Close()
}

func validateOutput() error {
	switch strings.ToLower(outputFormat) {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", outputFormat)
	}
}

func jsonOutput() bool {
	return strings.ToLower(outputFormat) == "json"
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
