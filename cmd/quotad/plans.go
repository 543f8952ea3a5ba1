package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moodmoney/quota/pkg/plans"
)

func newPlansCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Print the plan catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(plans.Catalog())
			}
			return printCatalog(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

func printCatalog(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tTRANSACTIONS\tRECEIPTS\tAI CHATS\tCAPABILITIES")
	for _, tier := range plans.Tiers() {
		l := plans.LimitsFor(tier)
		caps := make([]string, 0, len(l.Capabilities))
		for _, c := range l.Capabilities {
			caps = append(caps, string(c))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tier,
			limit(l.Transactions),
			limit(l.Receipts),
			limit(l.AIChats),
			strings.Join(caps, ","),
		)
	}
	return tw.Flush()
}

func limit(n int64) string {
	if plans.IsUnlimited(n) {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
