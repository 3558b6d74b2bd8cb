package person

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
)

var errInvalidHeaders = errors.New("the sheet headers do not match the template")

// Row is one parsed spreadsheet row. Line is 1-based and counts the header.
type Row struct {
	Line    int
	Base    map[string]string
	Dynamic map[string]interface{}
}

// ParseSheet matches the headers against the base columns, then the template fields.
// Unknown, duplicate or missing required base columns fail the whole sheet. Blank rows are skipped.
func ParseSheet(sheet core.Sheet, base []field.Descriptor, tpl field.Template) ([]Row, error) {
	baseNames := make(map[string]bool, len(base))
	descs := make([]field.Descriptor, 0, len(base)+len(tpl.Fields))
	for _, d := range base {
		baseNames[d.Name] = true
		descs = append(descs, d)
	}
	for _, d := range tpl.Sorted() {
		if !baseNames[d.Name] {
			descs = append(descs, d)
		}
	}

	matched, fldErrs := field.MatchHeaders(sheet.Headers, descs)
	found := make(map[string]bool, len(matched))
	for _, d := range matched {
		found[d.Name] = true
	}
	for _, d := range base {
		if d.Required && !found[d.Name] {
			fldErrs = append(fldErrs, core.FieldError{Field: d.Label, Error: "missing column"})
		}
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(errInvalidHeaders, fldErrs...)
	}

	rows := make([]Row, 0, len(sheet.Rows))
	for i, cells := range sheet.Rows {
		if isBlank(cells) {
			continue
		}
		row := Row{Line: i + 2, Base: make(map[string]string), Dynamic: make(map[string]interface{})}
		for col, d := range matched {
			cell := sheet.Cell(i, col)
			if baseNames[d.Name] {
				row.Base[d.Name] = strings.TrimSpace(cell)
				continue
			}
			if value := field.ParseCell(d, cell); value != nil {
				row.Dynamic[d.Name] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// SheetRecord is one exported person: Base cells are aligned with the base columns.
type SheetRecord struct {
	Base    []string
	Dynamic map[string]interface{}
}

// BuildSheet lays out the base columns followed by the visible template fields.
func BuildSheet(base []field.Descriptor, tpl field.Template, records []SheetRecord) core.Sheet {
	cols := field.Columns(tpl)
	sheet := core.Sheet{
		Headers: make([]string, 0, len(base)+len(cols)),
		Rows:    make([][]string, 0, len(records)),
	}
	for _, d := range base {
		sheet.Headers = append(sheet.Headers, d.Label)
	}
	for _, col := range cols {
		sheet.Headers = append(sheet.Headers, col.Label)
	}
	for _, rec := range records {
		row := make([]string, 0, len(sheet.Headers))
		for i := range base {
			var cell string
			if i < len(rec.Base) {
				cell = rec.Base[i]
			}
			row = append(row, cell)
		}
		row = append(row, field.Cells(tpl, rec.Dynamic)...)
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

// ImportRows calls create for every row. Rows failing validation are reported, not fatal.
func ImportRows(rows []Row, create func(row Row) (string, error)) (core.ImportResult, error) {
	res := core.ImportResult{Created: []string{}, Skipped: []core.RowError{}}
	for _, row := range rows {
		id, err := create(row)
		if err != nil {
			fields, ok := core.ErrorFields(err)
			if !ok {
				return res, errors.Wrapf(err, "importing row %d", row.Line)
			}
			res.Skipped = append(res.Skipped, core.RowError{Row: row.Line, Fields: fields})
			continue
		}
		res.Created = append(res.Created, id)
	}
	return res, nil
}
