//go:build !integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lien-cli/internal/dedupe"
	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/sheet"
	"github.com/sells-group/lien-cli/internal/site"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"run", "dedupe", "sites", "runs", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "lien-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRunCommand_Flags(t *testing.T) {
	for _, name := range []string{"input", "pdf-dir", "site", "sites", "max-results", "output", "dry-run", "json"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "run command should have --%s", name)
	}
	assert.Equal(t, "0", runCmd.Flags().Lookup("max-results").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestFormatSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	formatSummary(&buf, model.RunSummary{
		RunID:             "run-42",
		RecordsFound:      5,
		RecordsWritten:    4,
		DuplicatesSkipped: 1,
		Sites: []model.SiteSummary{{
			SiteID:            "12",
			SiteName:          "NYC ACRIS",
			RecordsFound:      5,
			RecordsWritten:    4,
			DuplicatesSkipped: 1,
			Tiers:             map[model.Tier]int{model.TierHigh: 3, model.TierLow: 1},
		}},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	})

	out := buf.String()
	assert.Contains(t, out, "SITE")
	assert.Contains(t, out, "NYC ACRIS")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "run run-42 finished in 1.5s")
}

func TestFormatDuplicates(t *testing.T) {
	var buf bytes.Buffer
	formatDuplicates(&buf, dedupe.Result{
		TotalRows:  4,
		UniqueRows: 2,
		Duplicates: 2,
		Groups:     []dedupe.Group{{Key: "12_100_SMITH", Rows: []int{0, 2, 3}}},
	})

	out := buf.String()
	assert.Contains(t, out, "4 rows, 2 unique, 2 duplicates")
	assert.Contains(t, out, "12_100_SMITH")
	assert.Contains(t, out, "2,4,5")
}

func TestFormatDuplicates_NoGroups(t *testing.T) {
	var buf bytes.Buffer
	formatDuplicates(&buf, dedupe.Result{TotalRows: 1, UniqueRows: 1})
	assert.NotContains(t, buf.String(), "KEY")
}

func TestFormatSites(t *testing.T) {
	sites := site.Defaults()
	sites[0].OptionalFields = []model.Slot{model.SlotZip, model.SlotCity}
	sites[1].Disabled = true

	var buf bytes.Buffer
	formatSites(&buf, sites)

	out := buf.String()
	assert.Contains(t, out, "DATE_SOURCE")
	assert.Contains(t, out, "nyc_acris")
	assert.Contains(t, out, "zip,city")
	assert.Contains(t, out, "false")
}

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Sites:     []string{"12", "10"},
			Status:    model.RunStatusComplete,
			Summary:   &model.RunSummary{RecordsFound: 9, RecordsWritten: 7},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Status:    model.RunStatusFailed,
			Error:     `site config "99": unknown site id`,
			CreatedAt: now.Add(-time.Hour),
			UpdatedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "abc12345")
	assert.NotContains(t, out, "abc12345-6789")
	assert.Contains(t, out, "12,10")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "2026-06-15 10:30")
}

func TestRunStats(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{
			Status: model.RunStatusComplete,
			Summary: &model.RunSummary{
				RecordsFound: 5, RecordsWritten: 4, DuplicatesSkipped: 1,
				Sites: []model.SiteSummary{
					{SiteID: "12", Tiers: map[model.Tier]int{model.TierHigh: 3}},
					{SiteID: "10", Tiers: map[model.Tier]int{model.TierLow: 1}},
				},
			},
			CreatedAt: now, UpdatedAt: now.Add(10 * time.Second),
		},
		{Status: model.RunStatusComplete, CreatedAt: now, UpdatedAt: now.Add(20 * time.Second)},
		{Status: model.RunStatusFailed, CreatedAt: now, UpdatedAt: now},
		{Status: model.RunStatusRunning, CreatedAt: now, UpdatedAt: now},
	}

	stats := computeRunStats(runs)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Complete)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Running)
	assert.Equal(t, 4, stats.Written)
	assert.Equal(t, 3, stats.Tiers[model.TierHigh])
	assert.InDelta(t, 15.0, stats.AvgDurSecs, 0.01)

	var buf bytes.Buffer
	formatRunStats(&buf, stats)
	assert.Contains(t, buf.String(), "Avg duration:")
	assert.Contains(t, buf.String(), "15.0s")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", truncateID("abc"))
	assert.Equal(t, "12345678", truncateID("1234567890"))
}

func TestReadExtractions_Files(t *testing.T) {
	useTestConfig(t, "none")
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("debtor_name,amount\nJane Doe,100\n"), 0o644))
	jsonlPath := filepath.Join(dir, "b.jsonl")
	require.NoError(t, os.WriteFile(jsonlPath, []byte(`{"site_id":"10","raw_fields":{"amount":"5"}}`+"\n"), 0o644))

	prevInputs, prevSite := runInputs, runSiteID
	t.Cleanup(func() { runInputs, runSiteID = prevInputs, prevSite })
	runInputs = []string{csvPath, jsonlPath}
	runSiteID = "12"

	out, err := readExtractions(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "12", out[0].SiteID)
	assert.Equal(t, "10", out[1].SiteID)
}

func TestDedupeCommand_Apply(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "liens.xlsx")
	t.Setenv("LIEN_OUTPUT_PATH", path)
	t.Setenv("LIEN_LOG_LEVEL", "error")

	prevCfg := cfg
	t.Cleanup(func() {
		cfg = prevCfg
		dedupeApply, dedupeOutput = false, ""
		rootCmd.SetArgs(nil)
	})

	rec := func(amount, last string) model.LienRecord {
		return model.LienRecord{SiteID: "12", Amount: amount, LastName: last, DedupeKey: dedupe.Key("12", amount, last)}
	}
	wb := sheet.New(sheet.Options{Path: path})
	require.NoError(t, wb.Append(context.Background(), sheet.Batch{Records: []model.LienRecord{
		rec("100", "Smith"),
		rec("200", "Jones"),
		rec("100", "SMITH"),
	}}))

	rootCmd.SetArgs([]string{"dedupe", "--apply"})
	require.NoError(t, rootCmd.Execute())

	rows, err := wb.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Smith", rows[0][9])
	assert.Equal(t, "Jones", rows[1][9])
}
