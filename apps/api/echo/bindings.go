package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/services/spreadsheet"
)

var (
	orderingParam = "ordering"
	idParam       = "id"
	fileParam     = "file"

	writeSheet = spreadsheet.Write // mockable
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// FieldValue is the body of an inline field update.
type FieldValue struct {
	Value interface{} `json:"value"`
}

// bindIDs returns the ids listed as `?id=1&id=2` or `?id=1,2`.
func bindIDs(ctx echo.Context) []string {
	var ids []string
	for _, val := range ctx.QueryParams()[idParam] {
		ids = append(ids, core.CleanStrings(strings.Split(val, ","))...)
	}
	return ids
}

// bindSheet reads the workbook uploaded as the `file` form field.
func bindSheet(ctx echo.Context) (core.Sheet, error) {
	fh, err := ctx.FormFile(fileParam)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return core.Sheet{}, errFileRequired
		}
		return core.Sheet{}, errors.Wrap(err, "reading multipart form")
	}
	f, err := fh.Open()
	if err != nil {
		return core.Sheet{}, errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	sheet, err := spreadsheet.Read(f)
	if err != nil {
		return core.Sheet{}, core.NewValidationError(err, core.FieldError{Field: fileParam, Error: errUnreadableWorkbook})
	}
	return sheet, nil
}

// sendSheet writes sheet as an xlsx attachment named after name and today's date.
func sendSheet(ctx echo.Context, name string, sheet core.Sheet) error {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("20060102"))
	var buf bytes.Buffer
	if err := writeSheet(&buf, name, sheet); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, spreadsheet.ContentType, buf.Bytes())
}
