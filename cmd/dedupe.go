package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lien-cli/internal/dedupe"
	"github.com/sells-group/lien-cli/internal/resilience"
	"github.com/sells-group/lien-cli/internal/sheet"
)

var (
	dedupeOutput string
	dedupeApply  bool
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find duplicate rows on the Liens tab",
	Long: `Groups rows of the output workbook's Liens tab by dedupe key and prints each
group with more than one row. With --apply the tab is rewritten keeping the
first row of every group.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if dedupeOutput != "" {
			cfg.Output.Path = dedupeOutput
		}
		if err := cfg.Validate("dedupe"); err != nil {
			return err
		}

		wb := sheet.New(sheet.Options{
			Path:      cfg.Output.Path,
			LiensTab:  cfg.Output.LiensTab,
			ErrorsTab: cfg.Output.ErrorsTab,
			AuditTab:  cfg.Output.AuditTab,
			Retry:     resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs),
		})

		rows, err := wb.Rows(ctx)
		if err != nil {
			return eris.Wrap(err, "dedupe: read sheet")
		}
		res := dedupe.FindDuplicates(rows)
		formatDuplicates(os.Stdout, res)

		if !dedupeApply || res.Duplicates == 0 {
			return nil
		}

		kept := make([][]string, 0, len(res.Keep))
		for _, i := range res.Keep {
			kept = append(kept, rows[i])
		}
		if err := wb.ReplaceLiens(ctx, kept); err != nil {
			return eris.Wrap(err, "dedupe: rewrite sheet")
		}
		zap.L().Info("duplicates removed",
			zap.String("path", wb.Path()),
			zap.Int("removed", res.Duplicates),
			zap.Int("kept", len(kept)),
		)
		return nil
	},
}

// formatDuplicates writes the duplicate groups of res to out. Row numbers
// are 1-based sheet rows, counting the header.
func formatDuplicates(out io.Writer, res dedupe.Result) {
	_, _ = fmt.Fprintf(out, "%d rows, %d unique, %d duplicates\n", res.TotalRows, res.UniqueRows, res.Duplicates)
	if len(res.Groups) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tCOUNT\tROWS")
	_, _ = fmt.Fprintln(w, "---\t-----\t----")
	for _, g := range res.Groups {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", g.Key, len(g.Rows), sheetRows(g.Rows))
	}
	_ = w.Flush()
}

func sheetRows(idx []int) string {
	parts := make([]string, len(idx))
	for i, r := range idx {
		parts[i] = strconv.Itoa(r + 2)
	}
	return strings.Join(parts, ",")
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeOutput, "output", "", "workbook to check (overrides output.path)")
	dedupeCmd.Flags().BoolVar(&dedupeApply, "apply", false, "rewrite the Liens tab without duplicates")
	rootCmd.AddCommand(dedupeCmd)
}
