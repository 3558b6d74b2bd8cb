package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/person"
)

// personService holds the operations every person resource shares.
type personService interface {
	Delete(ctx context.Context, ids ...string) error
	Form(ctx context.Context, id string) (field.Form, error)
	View(ctx context.Context, id string) (person.Detail, error)
	Import(ctx context.Context, sheet core.Sheet) (core.ImportResult, error)
	Export(ctx context.Context) (core.Sheet, error)
}

type personApi struct {
	name     string // plural, eg. "students"
	svc      personService
	setField func(ctx context.Context, id, name string, value interface{}) (interface{}, error)
}

func registerPersonRoutes(g *echo.Group, api personApi) {
	g.DELETE("", api.destroyMultiple)
	g.GET("/form", api.form)
	g.GET("/export", api.export)
	g.POST("/import", api.importSheet)

	// detail endpoints
	g.DELETE("/:id", api.destroy)
	g.GET("/:id/view", api.view)
	g.PATCH("/:id/fields/:name", api.updateField)
}

func (api *personApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrapf(err, "deleting %s %s", api.name, id)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *personApi) destroyMultiple(ctx echo.Context) error {
	ids := bindIDs(ctx)
	if len(ids) > 0 {
		if err := api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
			return errors.Wrapf(err, "deleting %s", api.name)
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *personApi) form(ctx echo.Context) error {
	form, err := api.svc.Form(ctx.Request().Context(), ctx.QueryParam(idParam))
	if err != nil {
		return errors.Wrapf(err, "rendering %s form", api.name)
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *personApi) view(ctx echo.Context) error {
	detail, err := api.svc.View(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "rendering %s view", api.name)
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *personApi) updateField(ctx echo.Context) error {
	var data FieldValue
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FieldValue")
	}
	rec, err := api.setField(ctx.Request().Context(), ctx.Param("id"), ctx.Param("name"), data.Value)
	if err != nil {
		return errors.Wrapf(err, "setting %s field", api.name)
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *personApi) export(ctx echo.Context) error {
	sheet, err := api.svc.Export(ctx.Request().Context())
	if err != nil {
		return errors.Wrapf(err, "exporting %s", api.name)
	}
	return sendSheet(ctx, api.name, sheet)
}

func (api *personApi) importSheet(ctx echo.Context) error {
	sheet, err := bindSheet(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Import(ctx.Request().Context(), sheet)
	if err != nil {
		return errors.Wrapf(err, "importing %s", api.name)
	}
	return ctx.JSON(http.StatusOK, res)
}
