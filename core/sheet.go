package core

// Sheet is a header-matched tabular document used for spreadsheet import and export.
type Sheet struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the value at row/col or "" when the row is shorter than the header.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// RowError holds the field errors of one imported row. Row is 1-based and counts the header.
type RowError struct {
	Row    int               `json:"row"`
	Fields map[string]string `json:"fields"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Created []string   `json:"created"`
	Skipped []RowError `json:"skipped"`
}
