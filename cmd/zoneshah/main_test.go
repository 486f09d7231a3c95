package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hakim/zoneshah/internal/models"
	"github.com/hakim/zoneshah/internal/scanner"
	"github.com/miekg/dns"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	color.NoColor = true
}

// testEnv is a resolver plus an authoritative server for three test
// domains. Every NS record points at 127.0.0.1, where the TCP server
// hands out leaky.test and refuses everything else.
type testEnv struct {
	dir        string
	configPath string
	domainFile string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	resolverAddr := startDNS(t, "udp", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		switch name := r.Question[0].Name; name {
		case "leaky.test.", "safe.test.":
			m.SetReply(r)
			rr, _ := dns.NewRR(name + " 3600 IN NS 127.0.0.1.")
			m.Answer = append(m.Answer, rr)
		default:
			m.SetRcode(r, dns.RcodeNameError)
		}
		_ = w.WriteMsg(m)
	})

	authAddr := startDNS(t, "tcp", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		q := r.Question[0]
		if q.Qtype != dns.TypeAXFR || q.Name != "leaky.test." {
			m.SetRcode(r, dns.RcodeRefused)
			_ = w.WriteMsg(m)
			return
		}
		m.SetReply(r)
		soa, _ := dns.NewRR("leaky.test. 3600 IN SOA ns.leaky.test. admin.leaky.test. 1 7200 3600 1209600 3600")
		a, _ := dns.NewRR("www.leaky.test. 3600 IN A 192.0.2.1")
		m.Answer = []dns.RR{soa, a, soa}
		_ = w.WriteMsg(m)
	})
	_, authPort, _ := net.SplitHostPort(authAddr)

	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "zoneshah.yaml"),
		domainFile: filepath.Join(dir, "domains.txt"),
	}

	configYAML := fmt.Sprintf(`scan_dir: %s
db_path: %s
workers: 2
resolver:
  servers: ["%s"]
  timeout: 2s
transfer:
  timeout_seconds: 2
  port: %s
`, filepath.Join(dir, "scans"), filepath.Join(dir, "zoneshah.db"), resolverAddr, authPort)
	writeFile(t, env.configPath, configYAML)
	writeFile(t, env.domainFile, "leaky.test\n\nsafe.test\n  ghost.test  \n")

	return env
}

func startDNS(t *testing.T, network string, handler dns.HandlerFunc) string {
	t.Helper()

	started := make(chan struct{})
	srv := &dns.Server{Handler: handler, NotifyStartedFunc: func() { close(started) }}

	var addr string
	if network == "udp" {
		pc, err := net.ListenPacket("udp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		srv.PacketConn = pc
		addr = pc.LocalAddr().String()
	} else {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		srv.Listener = l
		addr = l.Addr().String()
	}

	go srv.ActivateAndServe()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })
	return addr
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// execute runs the command tree with fresh flag state
func execute(ctx context.Context, args ...string) (string, error) {
	resetFlags(rootCmd)
	cfg = nil

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestScanHistoryDiff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := execute(ctx, "--config", env.configPath, "-f", env.domainFile, "--no-banner")
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}
	for _, want := range []string{
		"[+] VULNERABLE DOMAIN FOUND:",
		"Zone transferred from NS server: 127.0.0.1 (3 records)",
		"[!] Zone transfer failed for domain: safe.test",
		"[!] No NS records found for domain: ghost.test",
		"[+] 1 vulnerable domain(s) found out of 3 scanned",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("scan output missing %q:\n%s", want, out)
		}
	}

	reports, _ := filepath.Glob(filepath.Join(env.dir, "scans", "*", "reports", "report.md"))
	raws, _ := filepath.Glob(filepath.Join(env.dir, "scans", "*", "raw", "results.json"))
	if len(reports) != 1 || len(raws) != 1 {
		t.Errorf("expected one report and one raw file, got %v %v", reports, raws)
	}

	out, err = execute(ctx, "--config", env.configPath, "scan", "-u", "leaky.test.", "--no-banner")
	if err != nil {
		t.Fatalf("second scan: %v\n%s", err, out)
	}

	out, err = execute(ctx, "--config", env.configPath, "history", "-d", "leaky.test")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Total: 2 scan(s)") || !strings.Contains(out, "VULNERABLE via 127.0.0.1") {
		t.Errorf("unexpected history:\n%s", out)
	}

	out, err = execute(ctx, "--config", env.configPath, "diff", "-d", "leaky.test")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "Newly vulnerable: 0, remediated: 0, still vulnerable: 1") {
		t.Errorf("unexpected diff:\n%s", out)
	}
	if diffs, _ := filepath.Glob(filepath.Join(env.dir, "scans", "*", "reports", "diff.md")); len(diffs) != 1 {
		t.Errorf("expected one diff report, got %v", diffs)
	}
}

func TestScanNoSave(t *testing.T) {
	env := newTestEnv(t)
	orig := resetSignals
	resetSignals = func() { t.Error("completed scan should keep signal handling") }
	t.Cleanup(func() { resetSignals = orig })

	out, err := execute(context.Background(), "--config", env.configPath, "-u", "safe.test", "--no-save", "--no-banner")
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[*] No vulnerable domains found.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "zoneshah.db")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("database should not be created with --no-save, stat err = %v", err)
	}
}

func TestScanWithoutTarget(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(context.Background(), "--config", env.configPath)
	if !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want errUsage", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("usage not printed:\n%s", out)
	}
}

func TestScanMissingFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(context.Background(), "--config", env.configPath, "-f", filepath.Join(env.dir, "missing.txt"))
	if !errors.Is(err, scanner.ErrInputFile) {
		t.Fatalf("err = %v, want ErrInputFile", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.dir, "zoneshah.db")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("no scan should be recorded for a missing input file")
	}
}

func TestScanInterrupted(t *testing.T) {
	env := newTestEnv(t)

	reset := 0
	orig := resetSignals
	resetSignals = func() { reset++ }
	t.Cleanup(func() { resetSignals = orig })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := execute(ctx, "--config", env.configPath, "-f", env.domainFile, "--no-banner")
	if !errors.Is(err, errInterrupted) {
		t.Fatalf("err = %v, want errInterrupted", err)
	}
	if reset != 1 {
		t.Errorf("signal handling reset %d times, want 1", reset)
	}
	if !strings.Contains(out, "[!] Scan interrupted") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	out, err := execute(context.Background(), "init", "--dir", dir)
	if err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}
	for _, p := range []string{"zoneshah.yaml", "scans", "zoneshah.db"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("%s not created: %v", p, err)
		}
	}

	if _, err := execute(context.Background(), "init", "--dir", dir); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := execute(context.Background(), "init", "--dir", dir, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	// The generated config keeps working from another directory.
	elsewhere := t.TempDir()
	chdir(t, elsewhere)
	out, err = execute(context.Background(), "--config", filepath.Join(dir, "zoneshah.yaml"), "history", "-d", "a.com")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No scan history found for a.com") {
		t.Errorf("unexpected history output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(elsewhere, "zoneshah.db")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("database created in the working directory instead of %s", dir)
	}
}

func TestDomainOutcome(t *testing.T) {
	tests := []struct {
		name   string
		result *models.DomainScanResult
		want   string
	}{
		{"absent", nil, "-"},
		{"vulnerable", &models.DomainScanResult{Vulnerable: true, SuccessfulServer: "ns1", RecordCount: 7}, "VULNERABLE via ns1 (7 records)"},
		{"unresolved", &models.DomainScanResult{}, "no NS records"},
		{"protected", &models.DomainScanResult{
			NameServers:    []string{"ns1", "ns2"},
			FailedAttempts: []models.TransferAttemptResult{{NameServer: "ns1"}, {NameServer: "ns2"}},
		}, "protected (2 NS)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domainOutcome(tt.result); got != tt.want {
				t.Errorf("domainOutcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShortScanID(t *testing.T) {
	if got := shortScanID("1234567890"); got != "12345678..." {
		t.Errorf("shortScanID = %q", got)
	}
	if got := shortScanID("abc"); got != "abc" {
		t.Errorf("shortScanID = %q", got)
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
