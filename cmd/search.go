package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/witness-archive/search-cli/internal/model"
)

var searchCmd = &cobra.Command{
	Use:   "search NAME...",
	Short: "Search all configured sources for one or more names",
	Long: "Searches every configured source for the given names. Matching is " +
		"case-insensitive; a multi-word name must be quoted, for example " +
		`"Lian Hussein".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := buildDispatcher(cfg)
		if err != nil {
			return err
		}

		report := d.Run(ctx, args)
		printReport(os.Stdout, report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

// printReport renders the matched results as a table followed by the total
// match count. Failed fetches carry no displayable count and are skipped.
func printReport(w io.Writer, report model.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCOUNT\tURL")
	for _, res := range report.Results {
		if res.Failed() {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", res.Name, res.Count(), res.URL)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "total matches: %d\n", report.TotalMatches())
}
