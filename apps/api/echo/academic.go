package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/academic"
)

type academicApi struct {
	svc *academic.Service
}

func registerAcademicAPI(g *echo.Group, svc *academic.Service) {
	api := academicApi{svc: svc}

	lg := g.Group("/levels")
	lg.POST("", api.createLevel)
	lg.GET("", api.queryLevels)
	lg.GET("/:id", api.retrieveLevel)
	lg.PUT("/:id", api.updateLevel)
	lg.DELETE("/:id", api.destroyLevel)

	cg := g.Group("/classes")
	cg.POST("", api.createClass)
	cg.GET("", api.queryClasses)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id", api.updateClass)
	cg.DELETE("/:id", api.destroyClass)

	sg := g.Group("/subjects")
	sg.POST("", api.createSubject)
	sg.GET("", api.querySubjects)
	sg.GET("/:id", api.retrieveSubject)
	sg.PUT("/:id", api.updateSubject)
	sg.DELETE("/:id", api.destroySubject)
}

// Levels

func (api *academicApi) createLevel(ctx echo.Context) error {
	var data academic.NewLevel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLevel")
	}
	lvl, err := api.svc.CreateLevel(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating level")
	}
	return ctx.JSON(http.StatusCreated, lvl)
}

func (api *academicApi) queryLevels(ctx echo.Context) error {
	levels, err := api.svc.QueryLevels(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying levels")
	}
	return ctx.JSON(http.StatusOK, levels)
}

func (api *academicApi) retrieveLevel(ctx echo.Context) error {
	lvl, err := api.svc.GetLevel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting level")
	}
	return ctx.JSON(http.StatusOK, lvl)
}

func (api *academicApi) updateLevel(ctx echo.Context) error {
	var data academic.NewLevel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLevel")
	}
	lvl, err := api.svc.UpdateLevel(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating level")
	}
	return ctx.JSON(http.StatusOK, lvl)
}

func (api *academicApi) destroyLevel(ctx echo.Context) error {
	if err := api.svc.DeleteLevel(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting level")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Classes

func (api *academicApi) createClass(ctx echo.Context) error {
	var data academic.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *academicApi) queryClasses(ctx echo.Context) error {
	var filter academic.ClassFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ClassFilter")
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *academicApi) retrieveClass(ctx echo.Context) error {
	detail, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *academicApi) updateClass(ctx echo.Context) error {
	var data academic.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	cls, err := api.svc.UpdateClass(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *academicApi) destroyClass(ctx echo.Context) error {
	if err := api.svc.DeleteClass(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *academicApi) createSubject(ctx echo.Context) error {
	var data academic.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *academicApi) querySubjects(ctx echo.Context) error {
	var filter academic.SubjectFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to SubjectFilter")
	}
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *academicApi) retrieveSubject(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *academicApi) updateSubject(ctx echo.Context) error {
	var data academic.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	sub, err := api.svc.UpdateSubject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *academicApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
