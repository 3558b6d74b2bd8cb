package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/rs/zerolog"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/exam"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/manager"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
)

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger
		// AccessLog receives one line per request, unless Conf.Server.DisableReqLogs is set.
		AccessLog *zerolog.Logger

		TemplateSvc   *field.Service
		StudentSvc    *student.Service
		TeacherSvc    *teacher.Service
		ParentSvc     *parent.Service
		ManagerSvc    *manager.Service
		AcademicSvc   *academic.Service
		AttendanceSvc *attendance.Service
		ExamSvc       *exam.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "deps.Conf"),
		vala.IsNotNil(deps.Logger, "deps.Logger"),
		vala.IsNotNil(deps.TemplateSvc, "deps.TemplateSvc"),
		vala.IsNotNil(deps.StudentSvc, "deps.StudentSvc"),
		vala.IsNotNil(deps.TeacherSvc, "deps.TeacherSvc"),
		vala.IsNotNil(deps.ParentSvc, "deps.ParentSvc"),
		vala.IsNotNil(deps.ManagerSvc, "deps.ManagerSvc"),
		vala.IsNotNil(deps.AcademicSvc, "deps.AcademicSvc"),
		vala.IsNotNil(deps.AttendanceSvc, "deps.AttendanceSvc"),
		vala.IsNotNil(deps.ExamSvc, "deps.ExamSvc"),
	).CheckAndPanic()

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		accessLog := s.deps.AccessLog
		if accessLog == nil {
			zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
			accessLog = &zl
		}
		s.app.Use(requestLogger(*accessLog))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.FrontendBaseURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", home)

	v1 := s.app.Group("/v1", latencyMiddleware(conf.Server.Latency))

	registerTemplateAPI(v1, s.deps.TemplateSvc)
	registerStudentAPI(v1, s.deps.StudentSvc)
	registerTeacherAPI(v1, s.deps.TeacherSvc)
	registerParentAPI(v1, s.deps.ParentSvc)
	registerManagerAPI(v1, s.deps.ManagerSvc)
	registerAcademicAPI(v1, s.deps.AcademicSvc)
	registerAttendanceAPI(v1, s.deps.AttendanceSvc)
	registerExamAPI(v1, s.deps.ExamSvc)
	registerUploadAPI(v1)
}

// Start listens until the server is shut down. Listening errors are sent to Errors().
func (s *Server) Start() {
	addr := s.deps.Conf.Address()
	s.deps.Logger.Info("API listening on " + addr)
	if err := s.app.Start(addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Shule API!")
}
