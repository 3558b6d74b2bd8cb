// Package spreadsheet reads and writes core.Sheet documents as xlsx workbooks.
package spreadsheet

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/shule/core"
)

const (
	ContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheetName = "Sheet1"
	maxSheetNameLen  = 31
)

var ErrNoSheet = errors.New("the workbook does not contain any sheet")

// Read returns the first sheet of the workbook. The first row holds the headers.
func Read(r io.Reader) (core.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return core.Sheet{}, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(0)
	if name == "" {
		return core.Sheet{}, ErrNoSheet
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return core.Sheet{}, errors.Wrapf(err, "reading sheet %q", name)
	}

	sheet := core.Sheet{Headers: []string{}, Rows: [][]string{}}
	if len(rows) == 0 {
		return sheet, nil
	}
	for _, h := range rows[0] {
		sheet.Headers = append(sheet.Headers, strings.TrimSpace(h))
	}
	sheet.Rows = append(sheet.Rows, rows[1:]...)
	return sheet, nil
}

// Write writes sheet as a single sheet workbook with a bold, frozen header row.
func Write(w io.Writer, sheetName string, sheet core.Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sanitizeSheetName(sheetName)
	if name != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, name); err != nil {
			return errors.Wrap(err, "naming sheet")
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err = writeRow(f, name, 1, sheet.Headers); err != nil {
		return err
	}
	if len(sheet.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err = f.SetCellStyle(name, "A1", last, style); err != nil {
			return errors.Wrap(err, "styling headers")
		}
		if err = f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return errors.Wrap(err, "freezing headers")
		}
	}
	for i, row := range sheet.Rows {
		if err = writeRow(f, name, i+2, row); err != nil {
			return err
		}
	}

	if _, err = f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func writeRow(f *excelize.File, sheetName string, rowNum int, cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return errors.Wrap(err, "locating row")
	}
	if err = f.SetSheetRow(sheetName, cell, &values); err != nil {
		return errors.Wrapf(err, "writing row %d", rowNum)
	}
	return nil
}

// sanitizeSheetName drops the characters excel forbids in sheet names.
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}
	if name == "" {
		return defaultSheetName
	}
	return name
}
