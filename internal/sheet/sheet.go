// Package sheet persists lien records to an XLSX workbook with a Liens tab
// of accepted rows, an Errors tab of records routed to review, and an Audit
// tab with one line per run.
package sheet

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/lien-cli/internal/dedupe"
	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/resilience"
)

// Default tab names.
const (
	DefaultLiensTab  = "Liens"
	DefaultErrorsTab = "Errors"
	DefaultAuditTab  = "Audit"
)

// ErrorColumns is the header of the Errors tab.
var ErrorColumns = []string{"SiteId", "SourceRef", "DedupeKey", "Tier", "Confidence", "Flags"}

const errKeyCol = 2

// AuditColumns is the header of the Audit tab.
var AuditColumns = []string{
	"RunId", "StartedAt", "FinishedAt", "Sites",
	"RecordsFound", "RecordsWritten", "DuplicatesSkipped",
	"High", "Medium", "Low",
}

// Options configures a Workbook.
type Options struct {
	Path      string
	LiensTab  string
	ErrorsTab string
	AuditTab  string
	Retry     resilience.RetryConfig
}

// Workbook is an XLSX file on disk. Every write loads the current file,
// applies the change, and saves atomically through a temp file.
type Workbook struct {
	opts Options
	mu   sync.Mutex
}

// New creates a Workbook handle. The file is created on first write.
func New(opts Options) *Workbook {
	if opts.LiensTab == "" {
		opts.LiensTab = DefaultLiensTab
	}
	if opts.ErrorsTab == "" {
		opts.ErrorsTab = DefaultErrorsTab
	}
	if opts.AuditTab == "" {
		opts.AuditTab = DefaultAuditTab
	}
	if opts.Retry.OnRetry == nil {
		opts.Retry.OnRetry = resilience.RetryLogger("sheet", "save")
	}
	return &Workbook{opts: opts}
}

// Path returns the workbook file path.
func (w *Workbook) Path() string { return w.opts.Path }

// Rows returns the Liens tab data rows, header excluded. A missing file or
// tab has no rows.
func (w *Workbook) Rows(ctx context.Context) ([][]string, error) {
	return w.tabRows(ctx, w.opts.LiensTab)
}

func (w *Workbook) tabRows(ctx context.Context, name string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil || f == nil {
		return nil, err
	}
	sheet, ok := f.Sheet[name]
	if !ok {
		return nil, nil
	}
	return dataRows(sheet), nil
}

// Keys implements dedupe.KeySource over the rows already on the Liens tab,
// plus the recorded keys on the Errors tab. Flagged records such as those
// with a malformed amount are keyed on text the Liens row does not carry.
func (w *Workbook) Keys(ctx context.Context) ([]string, error) {
	rows, err := w.Rows(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, dedupe.RowKey(row))
	}

	errRows, err := w.tabRows(ctx, w.opts.ErrorsTab)
	if err != nil {
		return nil, err
	}
	for _, row := range errRows {
		if len(row) > errKeyCol && row[errKeyCol] != "" {
			keys = append(keys, row[errKeyCol])
		}
	}
	return keys, nil
}

// Batch is everything one run writes.
type Batch struct {
	Records []model.LienRecord
	Summary model.RunSummary
}

// Append writes accepted records to Liens, records below the High tier to
// Errors, and one Audit line for the run.
func (w *Workbook) Append(ctx context.Context, b Batch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return resilience.Do(ctx, w.opts.Retry, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := w.open()
		if err != nil {
			return err
		}
		if f == nil {
			f = xlsx.NewFile()
		}

		liens, err := tab(f, w.opts.LiensTab, model.Columns)
		if err != nil {
			return err
		}
		errs, err := tab(f, w.opts.ErrorsTab, ErrorColumns)
		if err != nil {
			return err
		}
		audit, err := tab(f, w.opts.AuditTab, AuditColumns)
		if err != nil {
			return err
		}

		var review int
		for _, r := range b.Records {
			addRow(liens, r.Row())
			if r.Confidence.Tier != model.TierHigh || len(r.Confidence.Flags) > 0 {
				addRow(errs, errorRow(r))
				review++
			}
		}
		addRow(audit, auditRow(b.Summary))

		if err := w.save(f); err != nil {
			return err
		}
		zap.L().Info("sheet: batch written",
			zap.String("path", w.opts.Path),
			zap.Int("records", len(b.Records)),
			zap.Int("review", review),
		)
		return nil
	})
}

// ReplaceLiens rewrites the Liens tab with rows under the canonical header.
// Other tabs are carried over as values.
func (w *Workbook) ReplaceLiens(ctx context.Context, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return resilience.Do(ctx, w.opts.Retry, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := w.open()
		if err != nil {
			return err
		}
		if src == nil {
			return eris.Errorf("sheet: %s does not exist", w.opts.Path)
		}

		out := xlsx.NewFile()
		replaced := false
		for _, s := range src.Sheets {
			dst, err := out.AddSheet(s.Name)
			if err != nil {
				return eris.Wrapf(err, "sheet: copy tab %s", s.Name)
			}
			if s.Name == w.opts.LiensTab {
				addRow(dst, model.Columns)
				for _, row := range rows {
					addRow(dst, row)
				}
				replaced = true
				continue
			}
			for _, row := range s.Rows {
				addRow(dst, rowToStrings(row))
			}
		}
		if !replaced {
			return eris.Errorf("sheet: tab %s not found in %s", w.opts.LiensTab, w.opts.Path)
		}
		return w.save(out)
	})
}

// open loads the workbook, returning nil with no error when the file does
// not exist yet.
func (w *Workbook) open() (*xlsx.File, error) {
	f, err := xlsx.OpenFile(w.opts.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if _, statErr := os.Stat(w.opts.Path); errors.Is(statErr, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sheet: open %s", w.opts.Path)
	}
	return f, nil
}

func (w *Workbook) save(f *xlsx.File) error {
	dir := filepath.Dir(w.opts.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "sheet: create dir %s", dir)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(w.opts.Path)+".tmp")
	if err := f.Save(tmp); err != nil {
		return eris.Wrapf(err, "sheet: save %s", tmp)
	}
	if err := os.Rename(tmp, w.opts.Path); err != nil {
		_ = os.Remove(tmp)
		// Another process holding the target blocks the swap until it lets go.
		return resilience.NewTransientError("sheet: replace "+w.opts.Path, err)
	}
	return nil
}

// tab returns the named sheet, creating it with header when missing.
func tab(f *xlsx.File, name string, header []string) (*xlsx.Sheet, error) {
	if s, ok := f.Sheet[name]; ok {
		return s, nil
	}
	s, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: add tab %s", name)
	}
	addRow(s, header)
	return s, nil
}

func addRow(s *xlsx.Sheet, cells []string) {
	row := s.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}

func dataRows(s *xlsx.Sheet) [][]string {
	var rows [][]string
	for i, row := range s.Rows {
		if i == 0 {
			continue // header
		}
		cells := rowToStrings(row)
		if blank(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func errorRow(r model.LienRecord) []string {
	return []string{
		r.SiteID,
		r.SourceRef,
		r.DedupeKey,
		string(r.Confidence.Tier),
		strconv.FormatFloat(r.Confidence.Aggregate, 'f', 3, 64),
		strings.Join(r.Confidence.Flags, ";"),
	}
}

func auditRow(s model.RunSummary) []string {
	var ids []string
	tiers := map[model.Tier]int{}
	for _, site := range s.Sites {
		ids = append(ids, site.SiteID)
		for t, n := range site.Tiers {
			tiers[t] += n
		}
	}
	return []string{
		s.RunID,
		s.StartedAt.UTC().Format(time.RFC3339),
		s.FinishedAt.UTC().Format(time.RFC3339),
		strings.Join(ids, ","),
		strconv.Itoa(s.RecordsFound),
		strconv.Itoa(s.RecordsWritten),
		strconv.Itoa(s.DuplicatesSkipped),
		strconv.Itoa(tiers[model.TierHigh]),
		strconv.Itoa(tiers[model.TierMedium]),
		strconv.Itoa(tiers[model.TierLow]),
	}
}
