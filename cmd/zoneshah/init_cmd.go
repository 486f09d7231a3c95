package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hakim/zoneshah/internal/config"
	"github.com/hakim/zoneshah/internal/storage"
	"github.com/spf13/cobra"
)

var (
	initForce bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize zoneshah with default configuration",
	Long: `Creates a default configuration file (zoneshah.yaml), initializes the
scan directory, and sets up the database for storing scan history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		configPath := filepath.Join(initDir, "zoneshah.yaml")

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists at %s. Use --force to overwrite", configPath)
		}

		if err := storage.EnsureDir(initDir); err != nil {
			return fmt.Errorf("failed to create %s: %w", initDir, err)
		}

		// Create default config
		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Fprintf(out, "Created %s with default configuration\n", configPath)

		// Load the config we just created to get paths
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Load anchors the relative defaults to initDir.
		scanDir := c.ScanDir
		if err := storage.EnsureDir(scanDir); err != nil {
			return fmt.Errorf("failed to create scan directory: %w", err)
		}
		fmt.Fprintf(out, "Created scan directory: %s\n", scanDir)

		dbPath := c.DBPath
		store, err := storage.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()
		fmt.Fprintf(out, "Initialized database: %s\n", dbPath)

		fmt.Fprintln(out)
		fmt.Fprintln(out, "ZoneShah initialized successfully!")
		fmt.Fprintln(out, "Run 'zoneshah check' to verify your resolvers.")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "output directory")
	rootCmd.AddCommand(initCmd)
}
