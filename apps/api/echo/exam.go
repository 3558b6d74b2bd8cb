package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/exam"
)

type examApi struct {
	svc *exam.Service
}

func registerExamAPI(g *echo.Group, svc *exam.Service) {
	api := examApi{svc: svc}

	qg := g.Group("/questions")
	qg.POST("", api.createQuestion)
	qg.GET("", api.queryQuestions)
	qg.GET("/:id", api.retrieveQuestion)
	qg.PUT("/:id", api.updateQuestion)
	qg.DELETE("/:id", api.destroyQuestion)

	eg := g.Group("/exams")
	eg.POST("", api.createExam)
	eg.GET("", api.queryExams)
	eg.POST("/generate", api.generate)
	eg.GET("/:id", api.retrieveExam)
	eg.PUT("/:id", api.updateExam)
	eg.DELETE("/:id", api.destroyExam)
	eg.GET("/:id/print", api.print)
	eg.POST("/:id/grade", api.grade)
}

// Questions

func (api *examApi) createQuestion(ctx echo.Context) error {
	var data exam.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	q, err := api.svc.CreateQuestion(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *examApi) queryQuestions(ctx echo.Context) error {
	var filter exam.QuestionFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QuestionFilter")
	}
	questions, err := api.svc.QueryQuestions(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *examApi) retrieveQuestion(ctx echo.Context) error {
	q, err := api.svc.GetQuestion(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *examApi) updateQuestion(ctx echo.Context) error {
	var data exam.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	q, err := api.svc.UpdateQuestion(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *examApi) destroyQuestion(ctx echo.Context) error {
	if err := api.svc.DeleteQuestion(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Exams

func (api *examApi) createExam(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	e, err := api.svc.CreateExam(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *examApi) generate(ctx echo.Context) error {
	var data exam.GenerateExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateExam")
	}
	e, err := api.svc.Generate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating exam")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *examApi) queryExams(ctx echo.Context) error {
	var filter exam.ExamFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ExamFilter")
	}
	exams, err := api.svc.QueryExams(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) retrieveExam(ctx echo.Context) error {
	e, err := api.svc.GetExam(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting exam")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) updateExam(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	e, err := api.svc.UpdateExam(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) destroyExam(ctx echo.Context) error {
	if err := api.svc.DeleteExam(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// print answers JSON, or the printable page itself with `?format=html`.
func (api *examApi) print(ctx echo.Context) error {
	p, err := api.svc.Print(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "printing exam")
	}
	if ctx.QueryParam("format") == "html" {
		return ctx.HTML(http.StatusOK, p.HTML)
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *examApi) grade(ctx echo.Context) error {
	var data exam.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	res, err := api.svc.Grade(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading exam")
	}
	return ctx.JSON(http.StatusOK, res)
}
