package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/parent"
)

type parentApi struct {
	svc *parent.Service
}

func registerParentAPI(g *echo.Group, svc *parent.Service) {
	api := parentApi{svc: svc}

	pg := g.Group("/parents")
	pg.POST("", api.create)
	pg.GET("", api.query)
	registerPersonRoutes(pg, personApi{
		name: "parents",
		svc:  svc,
		setField: func(ctx context.Context, id, name string, value interface{}) (interface{}, error) {
			return svc.SetField(ctx, id, name, value)
		},
	})

	// detail endpoints
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.GET("/:id/family", api.family)
}

// Handlers

func (api *parentApi) create(ctx echo.Context) error {
	var data parent.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	rec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating parent")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *parentApi) query(ctx echo.Context) error {
	var filter parent.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	recs, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying parents")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *parentApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting parent")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *parentApi) update(ctx echo.Context) error {
	var data parent.UpdateParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateParent")
	}
	rec, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating parent")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *parentApi) family(ctx echo.Context) error {
	fam, err := api.svc.GetFamily(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting family")
	}
	return ctx.JSON(http.StatusOK, fam)
}
