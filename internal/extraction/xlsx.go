package extraction

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lien-cli/internal/model"
)

// ReadXLSX reads extractions from a workbook sheet laid out like the CSV
// input: a header row followed by one filing per row.
func ReadXLSX(path string, opts Options) ([]model.RawExtraction, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	var (
		header *headerIndex
		out    []model.RawExtraction
	)
	for i, row := range sheet.Rows {
		cells := rowToStrings(row)
		if header == nil {
			if blank(cells) {
				continue
			}
			h, err := parseHeader(cells)
			if err != nil {
				return nil, err
			}
			header = &h
			continue
		}
		if blank(cells) {
			continue
		}
		raw, err := header.row(cells, i+1, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
