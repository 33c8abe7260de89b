package extraction

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lien-cli/internal/model"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Options
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// StreamCSV reads delimited rows and sends them to a channel with fields
// trimmed. Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV parses a CSV whose first row names the columns: slot names (or
// their aliases) plus optional site_id, source_ref, and hints.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]model.RawExtraction, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)

	var (
		header *headerIndex
		out    []model.RawExtraction
		rowErr error
		line   int
	)
	for cells := range rowCh {
		line++
		if rowErr != nil {
			continue // drain
		}
		if header == nil {
			h, err := parseHeader(cells)
			if err != nil {
				rowErr = err
				continue
			}
			header = &h
			continue
		}
		if blank(cells) {
			continue
		}
		raw, err := header.row(cells, line, opts.Options)
		if err != nil {
			rowErr = err
			continue
		}
		out = append(out, raw)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	if rowErr != nil {
		return nil, rowErr
	}
	return out, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
