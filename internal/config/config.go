package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ZONESHAH_WORKERS
const EnvPrefix = "ZONESHAH"

// Config represents the application configuration
type Config struct {
	ScanDir  string         `mapstructure:"scan_dir" yaml:"scan_dir"`
	DBPath   string         `mapstructure:"db_path" yaml:"db_path"`
	Workers  int            `mapstructure:"workers" yaml:"workers"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Transfer TransferConfig `mapstructure:"transfer" yaml:"transfer"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
}

// ResolverConfig controls how NS records are looked up
type ResolverConfig struct {
	// Servers overrides the system resolvers. Entries may omit the port.
	Servers    []string `mapstructure:"servers" yaml:"servers"`
	ResolvConf string   `mapstructure:"resolv_conf" yaml:"resolv_conf"`
	Timeout    string   `mapstructure:"timeout" yaml:"timeout"`
}

// TransferConfig controls the zone transfer attempts
type TransferConfig struct {
	TimeoutSeconds float64 `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Port           int     `mapstructure:"port" yaml:"port"`
}

// NotifyConfig configures the completion webhook
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
}

// Load reads configuration from a YAML file layered over DefaultConfig.
// If path is empty, searches for zoneshah.yaml in the current directory and
// ~/.config/zoneshah/. A missing file in the search locations is not an error.
// Relative scan_dir and db_path are taken relative to the file that was read.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("zoneshah")
		v.AddConfigPath(".")

		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "zoneshah"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		cfg.resolvePaths(filepath.Dir(used))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// resolvePaths anchors relative scan_dir and db_path to the directory of the
// config file they were read with
func (c *Config) resolvePaths(dir string) {
	c.ScanDir = relativeTo(dir, c.ScanDir)
	c.DBPath = relativeTo(dir, c.DBPath)
}

func relativeTo(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// setDefaults registers every key so that env overrides work without a file
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("scan_dir", d.ScanDir)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("resolver.servers", d.Resolver.Servers)
	v.SetDefault("resolver.resolv_conf", d.Resolver.ResolvConf)
	v.SetDefault("resolver.timeout", d.Resolver.Timeout)
	v.SetDefault("transfer.timeout_seconds", d.Transfer.TimeoutSeconds)
	v.SetDefault("transfer.port", d.Transfer.Port)
	v.SetDefault("notify.webhook_url", d.Notify.WebhookURL)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.ScanDir == "" {
		errs = append(errs, errors.New("scan_dir cannot be empty"))
	}

	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path cannot be empty"))
	}

	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}

	if t := c.Transfer.TimeoutSeconds; math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
		errs = append(errs, fmt.Errorf("transfer.timeout_seconds must be a positive finite number, got %v", t))
	}

	if c.Transfer.Port <= 0 || c.Transfer.Port > 65535 {
		errs = append(errs, fmt.Errorf("transfer.port %d out of range", c.Transfer.Port))
	}

	if c.Resolver.Timeout != "" {
		if d, err := time.ParseDuration(c.Resolver.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("resolver.timeout: %w", err))
		} else if d <= 0 {
			errs = append(errs, errors.New("resolver.timeout must be positive"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// TransferTimeout returns the per-attempt transfer timeout
func (c *Config) TransferTimeout() time.Duration {
	return time.Duration(c.Transfer.TimeoutSeconds * float64(time.Second))
}

// ResolverTimeout returns the NS query timeout, falling back to the default
func (c *Config) ResolverTimeout() time.Duration {
	d, err := time.ParseDuration(c.Resolver.Timeout)
	if err != nil || d <= 0 {
		return DefaultResolverTimeout
	}
	return d
}
