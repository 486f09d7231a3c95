package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/hakim/zoneshah/internal/resolver"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured resolvers answer",
	Long: `Send a root NS query to every configured resolver and show which ones
answer. NS lookups fall through unreachable resolvers, so at least one must
answer for a scan to find any name servers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := resolver.New(resolver.Config{
			Servers:    cfg.Resolver.Servers,
			ResolvConf: cfg.Resolver.ResolvConf,
			Timeout:    cfg.ResolverTimeout(),
		})
		if err != nil {
			return fmt.Errorf("configuring resolver: %w", err)
		}

		results := res.Check(cmd.Context())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Resolver\tStatus\tRTT\tError")
		fmt.Fprintln(w, "--------\t------\t---\t-----")

		okCount := 0
		for _, r := range results {
			status, rtt, detail := "[-]", "-", "-"
			if r.OK {
				status = "[+]"
				rtt = r.RTT.Round(time.Millisecond).String()
				okCount++
			} else if r.Err != nil {
				detail = r.Err.Error()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Server, status, rtt, detail)
		}
		w.Flush()

		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "Summary: %d/%d resolvers answering\n", okCount, len(results))

		if okCount == 0 {
			return fmt.Errorf("no resolver answered")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
