package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// Upload references a received file. Uploads are simulated: the content is discarded.
type Upload struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func registerUploadAPI(g *echo.Group) {
	g.POST("/uploads", upload)
}

func upload(ctx echo.Context) error {
	fh, err := ctx.FormFile(fileParam)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return errFileRequired
		}
		return errors.Wrap(err, "reading multipart form")
	}
	return ctx.JSON(http.StatusCreated, Upload{
		Path: core.SimulatedUploadPath(fh.Filename),
		Name: fh.Filename,
		Size: fh.Size,
	})
}
