package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTransferTimeoutSeconds bounds a single zone transfer attempt
	DefaultTransferTimeoutSeconds = 5

	// DefaultResolverTimeout bounds a single NS query
	DefaultResolverTimeout = 5 * time.Second

	DefaultResolvConf = "/etc/resolv.conf"
)

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		ScanDir: "scans",
		DBPath:  "zoneshah.db",
		Workers: 1,
		Resolver: ResolverConfig{
			Servers:    []string{},
			ResolvConf: DefaultResolvConf,
			Timeout:    DefaultResolverTimeout.String(),
		},
		Transfer: TransferConfig{
			TimeoutSeconds: DefaultTransferTimeoutSeconds,
			Port:           53,
		},
	}
}

// WriteDefault writes a default configuration to the specified path
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
