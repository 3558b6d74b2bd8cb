package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/teacher"
)

type teacherApi struct {
	svc *teacher.Service
}

func registerTeacherAPI(g *echo.Group, svc *teacher.Service) {
	api := teacherApi{svc: svc}

	tg := g.Group("/teachers")
	tg.POST("", api.create)
	tg.GET("", api.query)
	registerPersonRoutes(tg, personApi{
		name: "teachers",
		svc:  svc,
		setField: func(ctx context.Context, id, name string, value interface{}) (interface{}, error) {
			return svc.SetField(ctx, id, name, value)
		},
	})

	// detail endpoints
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
}

// Handlers

func (api *teacherApi) create(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	rec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *teacherApi) query(ctx echo.Context) error {
	var filter teacher.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	recs, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *teacherApi) update(ctx echo.Context) error {
	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	rec, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, rec)
}
