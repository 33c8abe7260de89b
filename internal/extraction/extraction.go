// Package extraction reads raw filing observations from JSON Lines, CSV,
// XLSX, and OCR text, and hands them to the pipeline as RawExtractions.
package extraction

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lien-cli/internal/model"
)

// Column names recognized alongside the slot names.
const (
	ColSiteID    = "site_id"
	ColSourceRef = "source_ref"
	ColHints     = "hints"
)

// Options configures how tabular input maps onto extractions.
type Options struct {
	// SiteID is used for rows that carry no site_id column or value.
	SiteID string
	// Sheet selects the XLSX sheet by name. Empty means the first sheet.
	Sheet string
	// SplitPages makes ReadPDFDir emit one filing per PDF page.
	SplitPages bool
}

// ReadFile loads every extraction in path, choosing the decoder by file
// extension: .jsonl/.ndjson, .json (array), .csv, .tsv, or .xlsx.
func ReadFile(ctx context.Context, path string, opts Options) ([]model.RawExtraction, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		return ReadXLSX(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extraction: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	switch ext {
	case ".jsonl", ".ndjson":
		return collect(DecodeJSONL(ctx, f, opts))
	case ".json":
		return ReadJSONArray(ctx, f, opts)
	case ".csv":
		return ReadCSV(ctx, f, CSVOptions{Options: opts})
	case ".tsv":
		return ReadCSV(ctx, f, CSVOptions{Options: opts, Delimiter: '\t'})
	default:
		return nil, eris.Errorf("extraction: unsupported input format %q", ext)
	}
}

func collect(outCh <-chan model.RawExtraction, errCh <-chan error) ([]model.RawExtraction, error) {
	var out []model.RawExtraction
	for raw := range outCh {
		out = append(out, raw)
	}
	for err := range errCh {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// headerIndex maps column positions to their meaning. Columns that are
// neither a slot nor a known meta column are ignored.
type headerIndex struct {
	slots     map[int]model.Slot
	siteID    int
	sourceRef int
	hints     int
}

func parseHeader(header []string) (headerIndex, error) {
	h := headerIndex{slots: make(map[int]model.Slot), siteID: -1, sourceRef: -1, hints: -1}
	for i, name := range header {
		key := columnKey(name)
		switch key {
		case ColSiteID, "siteid":
			h.siteID = i
		case ColSourceRef:
			h.sourceRef = i
		case ColHints:
			h.hints = i
		default:
			if slot, ok := model.ParseSlot(key); ok {
				h.slots[i] = slot
			}
		}
	}
	if len(h.slots) == 0 {
		return h, eris.New("extraction: header names no field columns")
	}
	return h, nil
}

func columnKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.Join(strings.FieldsFunc(key, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}

// row builds one extraction. Blank cells stay absent; line is the 1-based
// input line used in error messages.
func (h headerIndex) row(cells []string, line int, opts Options) (model.RawExtraction, error) {
	raw := model.RawExtraction{
		SiteID:    cell(cells, h.siteID),
		SourceRef: cell(cells, h.sourceRef),
		RawFields: make(map[model.Slot]string, len(h.slots)),
	}
	if raw.SiteID == "" {
		raw.SiteID = opts.SiteID
	}
	if raw.SiteID == "" {
		return raw, eris.Errorf("extraction: line %d: no site_id and no default site", line)
	}
	for i, slot := range h.slots {
		if v := cell(cells, i); v != "" {
			raw.RawFields[slot] = v
		}
	}
	for _, hint := range strings.FieldsFunc(cell(cells, h.hints), func(r rune) bool { return r == ';' || r == ',' }) {
		if hint = strings.TrimSpace(hint); hint != "" {
			raw.Hints = append(raw.Hints, model.Hint(hint))
		}
	}
	return raw, nil
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}
