package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/lien-cli/internal/site"
)

var sitesFile string

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List configured source sites",
	RunE: func(_ *cobra.Command, _ []string) error {
		if sitesFile != "" {
			cfg.Sites.Path = sitesFile
		}
		if err := cfg.Validate("sites"); err != nil {
			return err
		}
		reg, err := site.Load(cfg.Sites.Path)
		if err != nil {
			return err
		}
		formatSites(os.Stdout, reg.All())
		return nil
	},
}

// formatSites writes a tabular list of site configs to out.
func formatSites(out io.Writer, sites []site.Config) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKEY\tNAME\tLIABILITY\tDATE_SOURCE\tOPTIONAL\tENABLED")
	_, _ = fmt.Fprintln(w, "--\t---\t----\t---------\t-----------\t--------\t-------")
	for _, s := range sites {
		optional := make([]string, len(s.OptionalFields))
		for i, slot := range s.OptionalFields {
			optional[i] = string(slot)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			s.ID,
			s.Key,
			s.Name,
			s.Liability,
			s.DateFrom,
			strings.Join(optional, ","),
			!s.Disabled,
		)
	}
	_ = w.Flush()
}

func init() {
	sitesCmd.Flags().StringVar(&sitesFile, "sites-file", "", "site registry YAML (overrides sites.path)")
	rootCmd.AddCommand(sitesCmd)
}
