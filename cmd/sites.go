package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/witness-archive/search-cli/internal/site"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Inspect the configured source catalog",
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := site.LoadCatalog(cfg.Sites.Catalog)
		if err != nil {
			return err
		}
		printCatalog(os.Stdout, catalog)
		return nil
	},
}

func init() {
	sitesCmd.AddCommand(sitesListCmd)
	rootCmd.AddCommand(sitesCmd)
}

func printCatalog(w io.Writer, catalog site.Catalog) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tHOME")
	for _, e := range catalog.Sources {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Type, e.Home)
	}
	_ = tw.Flush()
}
