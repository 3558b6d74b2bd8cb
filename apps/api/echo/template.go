package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/field"
)

type (
	// SaveTemplateRequest replaces the field list of a template.
	// A non-zero Version must match the stored one.
	SaveTemplateRequest struct {
		field.UpdateTemplate
		Version int `json:"version"`
	}

	ReorderRequest struct {
		Names []string `json:"names"`
	}

	MoveRequest struct {
		Name  string `json:"name"`
		Index int    `json:"index"`
	}
)

type templateApi struct {
	svc *field.Service
}

func registerTemplateAPI(g *echo.Group, svc *field.Service) {
	api := templateApi{svc: svc}

	tg := g.Group("/settings/templates")
	tg.GET("", api.query)

	// detail endpoints
	kg := tg.Group("/:kind")
	kg.GET("", api.retrieve)
	kg.PUT("", api.update)
	kg.PUT("/order", api.reorder)
	kg.POST("/move", api.move)
	kg.GET("/history", api.history)
	kg.GET("/columns", api.columns)
}

func bindKind(ctx echo.Context) (field.Kind, error) {
	return field.ParseKind(ctx.Param("kind"))
}

// Handlers

func (api *templateApi) query(ctx echo.Context) error {
	tpls, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying templates")
	}
	return ctx.JSON(http.StatusOK, tpls)
}

func (api *templateApi) retrieve(ctx echo.Context) error {
	kind, err := bindKind(ctx)
	if err != nil {
		return err
	}
	tpl, err := api.svc.Get(ctx.Request().Context(), kind)
	if err != nil {
		return errors.Wrap(err, "getting template")
	}
	return ctx.JSON(http.StatusOK, tpl)
}

func (api *templateApi) update(ctx echo.Context) error {
	kind, err := bindKind(ctx)
	if err != nil {
		return err
	}
	var data SaveTemplateRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveTemplateRequest")
	}
	tpl, err := api.svc.Save(ctx.Request().Context(), kind, data.UpdateTemplate, data.Version)
	if err != nil {
		return errors.Wrap(err, "saving template")
	}
	return ctx.JSON(http.StatusOK, tpl)
}

func (api *templateApi) reorder(ctx echo.Context) error {
	kind, err := bindKind(ctx)
	if err != nil {
		return err
	}
	var data ReorderRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderRequest")
	}
	tpl, err := api.svc.Reorder(ctx.Request().Context(), kind, data.Names)
	if err != nil {
		return errors.Wrap(err, "reordering template")
	}
	return ctx.JSON(http.StatusOK, tpl)
}

func (api *templateApi) move(ctx echo.Context) error {
	kind, err := bindKind(ctx)
	if err != nil {
		return err
	}
	var data MoveRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MoveRequest")
	}
	tpl, err := api.svc.Move(ctx.Request().Context(), kind, data.Name, data.Index)
	if err != nil {
		return errors.Wrap(err, "moving template field")
	}
	return ctx.JSON(http.StatusOK, tpl)
}

func (api *templateApi) history(ctx echo.Context) error {
	kind, err := bindKind(ctx)
	if err != nil {
		return err
	}
	tpls, err := api.svc.History(ctx.Request().Context(), kind)
	if err != nil {
		return errors.Wrap(err, "getting template history")
	}
	return ctx.JSON(http.StatusOK, tpls)
}

func (api *templateApi) columns(ctx echo.Context) error {
	kind, err := bindKind(ctx)
	if err != nil {
		return err
	}
	tpl, err := api.svc.Get(ctx.Request().Context(), kind)
	if err != nil {
		return errors.Wrap(err, "getting template")
	}
	return ctx.JSON(http.StatusOK, field.Columns(tpl))
}
