package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance")
	ag.GET("", api.query)
	ag.POST("", api.mark)
	ag.GET("/summary", api.summary)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.MarkSheet
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkSheet")
	}
	recs, err := api.svc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var filter attendance.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	recs, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	var filter attendance.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	summaries, err := api.svc.Summarize(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, summaries)
}
