package dedupe

// Column positions in the canonical 14-column row.
const (
	colSiteID   = 0
	colAmount   = 2
	colCompany  = 7
	colLastName = 9
)

// Group is one key that occurs on more than one row. Rows are data-row
// indices (header excluded) in sheet order; the first is the one kept.
type Group struct {
	Key  string
	Rows []int
}

// Result summarizes a duplicate scan over existing rows.
type Result struct {
	TotalRows  int
	UniqueRows int
	Duplicates int
	Groups     []Group
	// Keep lists data-row indices that survive, first occurrence wins.
	Keep []int
}

// RowKey keys a canonical row the same way the pipeline keys records.
func RowKey(row []string) string {
	name := cell(row, colCompany)
	if name == "" {
		name = cell(row, colLastName)
	}
	return Key(cell(row, colSiteID), cell(row, colAmount), name)
}

// FindDuplicates scans data rows (no header) and groups rows sharing a key.
// Groups are reported in order of first occurrence.
func FindDuplicates(rows [][]string) Result {
	res := Result{TotalRows: len(rows)}
	first := make(map[string]int, len(rows))
	groupIdx := make(map[string]int)

	for i, row := range rows {
		key := RowKey(row)
		j, dup := first[key]
		if !dup {
			first[key] = i
			res.Keep = append(res.Keep, i)
			continue
		}
		gi, ok := groupIdx[key]
		if !ok {
			gi = len(res.Groups)
			groupIdx[key] = gi
			res.Groups = append(res.Groups, Group{Key: key, Rows: []int{j}})
		}
		res.Groups[gi].Rows = append(res.Groups[gi].Rows, i)
		res.Duplicates++
	}
	res.UniqueRows = len(res.Keep)
	return res
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
