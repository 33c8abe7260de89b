package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lien-cli/internal/extraction"
	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/ocr"
	"github.com/sells-group/lien-cli/internal/pipeline"
)

var (
	runInputs     []string
	runPDFDir     string
	runSiteID     string
	runSites      []string
	runSheetName  string
	runSitesFile  string
	runOutput     string
	runMaxResults int
	runDryRun     bool
	runJSON       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Normalize, score, and write a batch of lien filings",
	Long: `Reads raw filing extractions from CSV, TSV, JSON, JSONL, or XLSX files and
from a directory of filing PDFs, runs them through the pipeline, and appends
accepted records to the output workbook.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if len(runInputs) == 0 && runPDFDir == "" {
			return eris.New("run: --input or --pdf-dir is required")
		}

		env, err := initRunEnv(ctx, envOptions{
			mode:       "run",
			sitesPath:  runSitesFile,
			outputPath: runOutput,
			maxResults: runMaxResults,
		})
		if err != nil {
			return err
		}
		defer env.Close()

		extractions, err := readExtractions(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("extractions loaded",
			zap.Int("count", len(extractions)),
			zap.Strings("sites", runSites),
		)

		res, err := env.execute(ctx, pipeline.Request{Sites: runSites, Extractions: extractions}, runDryRun)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
			zap.String("run_id", res.Summary.RunID),
			zap.Int("found", res.Summary.RecordsFound),
			zap.Int("written", res.Summary.RecordsWritten),
			zap.Int("duplicates", res.Summary.DuplicatesSkipped),
			zap.Bool("dry_run", runDryRun),
		)

		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		formatSummary(os.Stdout, res.Summary)
		return nil
	},
}

// readExtractions loads every --input file and, when set, the --pdf-dir
// directory, in that order.
func readExtractions(ctx context.Context) ([]model.RawExtraction, error) {
	opts := extraction.Options{SiteID: runSiteID, Sheet: runSheetName}

	var out []model.RawExtraction
	for _, path := range runInputs {
		recs, err := extraction.ReadFile(ctx, path, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}

	if runPDFDir != "" {
		ext, err := ocr.NewExtractor(cfg.OCR)
		if err != nil {
			return nil, err
		}
		opts.SplitPages = cfg.OCR.SplitPages
		recs, err := extraction.ReadPDFDir(ctx, ext, runPDFDir, opts, cfg.Pipeline.Concurrency)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// formatSummary writes a per-site table of a run summary to out.
func formatSummary(out io.Writer, s model.RunSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SITE\tNAME\tFOUND\tWRITTEN\tDUPES\tHIGH\tMEDIUM\tLOW")
	_, _ = fmt.Fprintln(w, "----\t----\t-----\t-------\t-----\t----\t------\t---")
	for _, site := range s.Sites {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			site.SiteID,
			site.SiteName,
			site.RecordsFound,
			site.RecordsWritten,
			site.DuplicatesSkipped,
			site.Tiers[model.TierHigh],
			site.Tiers[model.TierMedium],
			site.Tiers[model.TierLow],
		)
	}
	_, _ = fmt.Fprintf(w, "TOTAL\t\t%d\t%d\t%d\t\t\t\n", s.RecordsFound, s.RecordsWritten, s.DuplicatesSkipped)
	_ = w.Flush()

	if s.RunID != "" {
		_, _ = fmt.Fprintf(out, "\nrun %s finished in %s\n", s.RunID, s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	}
}

func init() {
	runCmd.Flags().StringSliceVar(&runInputs, "input", nil, "extraction file (csv, tsv, json, jsonl, xlsx); repeatable")
	runCmd.Flags().StringVar(&runPDFDir, "pdf-dir", "", "directory of filing PDFs to extract")
	runCmd.Flags().StringVar(&runSiteID, "site", "", "site id for rows without one (required for --pdf-dir)")
	runCmd.Flags().StringSliceVar(&runSites, "sites", nil, "limit the run to these site ids")
	runCmd.Flags().StringVar(&runSheetName, "sheet", "", "xlsx input sheet name (default first sheet)")
	runCmd.Flags().StringVar(&runSitesFile, "sites-file", "", "site registry YAML (overrides sites.path)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output workbook (overrides output.path)")
	runCmd.Flags().IntVar(&runMaxResults, "max-results", 0, "max extractions per site (overrides pipeline.max_results)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "run the pipeline without writing the workbook or store")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(runCmd)
}
