package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zoneshah.yaml")
	content := `scan_dir: out
db_path: out/zoneshah.db
workers: 4
resolver:
  servers:
    - 127.0.0.1:5353
  timeout: 2s
transfer:
  timeout_seconds: 1.5
  port: 5300
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ScanDir != filepath.Join(dir, "out") || cfg.Workers != 4 || cfg.Transfer.Port != 5300 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.DBPath != filepath.Join(dir, "out", "zoneshah.db") {
		t.Errorf("db_path = %q, want it under the config directory", cfg.DBPath)
	}
	if len(cfg.Resolver.Servers) != 1 || cfg.Resolver.Servers[0] != "127.0.0.1:5353" {
		t.Errorf("resolver servers = %v", cfg.Resolver.Servers)
	}
	if got := cfg.TransferTimeout(); got != 1500*time.Millisecond {
		t.Errorf("TransferTimeout = %s, want 1.5s", got)
	}
	if got := cfg.ResolverTimeout(); got != 2*time.Second {
		t.Errorf("ResolverTimeout = %s, want 2s", got)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Resolver.ResolvConf != DefaultResolvConf {
		t.Errorf("resolv_conf = %q, want default", cfg.Resolver.ResolvConf)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ZONESHAH_WORKERS", "8")
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Workers)
	}
}

func TestLoadKeepsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")
	path := filepath.Join(dir, "zoneshah.yaml")
	content := "scan_dir: " + abs + "\ndb_path: " + filepath.Join(abs, "z.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScanDir != abs || cfg.DBPath != filepath.Join(abs, "z.db") {
		t.Errorf("absolute paths changed: %q %q", cfg.ScanDir, cfg.DBPath)
	}
}

func TestLoadWithoutFileKeepsRelativePaths(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScanDir != "scans" || cfg.DBPath != "zoneshah.db" {
		t.Errorf("defaults should stay relative to the working directory: %q %q", cfg.ScanDir, cfg.DBPath)
	}
}

func TestValidateRejectsNonFiniteTimeout(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -1} {
		cfg := DefaultConfig()
		cfg.Transfer.TimeoutSeconds = v
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "transfer.timeout_seconds") {
			t.Errorf("timeout_seconds %v: err = %v, want rejection", v, err)
		}
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{Resolver: ResolverConfig{Timeout: "soon"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	for _, want := range []string{"scan_dir", "db_path", "workers", "timeout_seconds", "transfer.port", "resolver.timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zoneshah.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load after WriteDefault: %v", err)
	}
	if cfg.Transfer.TimeoutSeconds != DefaultTransferTimeoutSeconds {
		t.Errorf("timeout_seconds = %v", cfg.Transfer.TimeoutSeconds)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring the previous one on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
