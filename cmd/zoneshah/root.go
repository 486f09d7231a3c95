package main

import (
	"context"
	"fmt"

	"github.com/hakim/zoneshah/internal/config"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "zoneshah [-u domain | -f file]",
	Short: "Detect DNS servers that allow unauthenticated zone transfers",
	Long: `ZoneShah checks whether the authoritative name servers of a domain hand out
the full zone over AXFR to anyone who asks.

For each domain it resolves the NS records, attempts a zone transfer against
every server in order, and stops at the first server that leaks the zone.
Scans are recorded in the local database so history and diff work across runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		skipConfig := map[string]bool{
			"init":    true,
			"help":    true,
			"version": true,
		}

		if skipConfig[cmd.Name()] {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
	RunE: runScan,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: ./zoneshah.yaml or ~/.config/zoneshah/zoneshah.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addScanFlags(rootCmd)

	rootCmd.Version = version
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
