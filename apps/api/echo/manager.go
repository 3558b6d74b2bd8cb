package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/manager"
)

type managerApi struct {
	svc *manager.Service
}

func registerManagerAPI(g *echo.Group, svc *manager.Service) {
	api := managerApi{svc: svc}

	mg := g.Group("/managers")
	mg.POST("", api.create)
	mg.GET("", api.query)
	mg.GET("/positions", api.queryPositions)
	registerPersonRoutes(mg, personApi{
		name: "managers",
		svc:  svc,
		setField: func(ctx context.Context, id, name string, value interface{}) (interface{}, error) {
			return svc.SetField(ctx, id, name, value)
		},
	})

	// detail endpoints
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update)
}

// Handlers

func (api *managerApi) create(ctx echo.Context) error {
	var data manager.NewManager
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewManager")
	}
	rec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating manager")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *managerApi) query(ctx echo.Context) error {
	var filter manager.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	recs, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying managers")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *managerApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting manager")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *managerApi) update(ctx echo.Context) error {
	var data manager.UpdateManager
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateManager")
	}
	rec, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating manager")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *managerApi) queryPositions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, manager.Positions)
}
