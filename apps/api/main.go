package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/exam"
	"github.com/trezcool/shule/core/field"
	"github.com/trezcool/shule/core/manager"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/teacher"
	appfs "github.com/trezcool/shule/fs"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/services/notify"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	"github.com/trezcool/shule/storage/seed"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(os.Stdout, "API", conf)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(os.Stdout, "DB", conf)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := inmemdb.Open()
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	dir := inmemdb.NewDirectory(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	parentRepo := inmemdb.NewParentRepository(db)
	academicRepo := inmemdb.NewAcademicRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var notifier attendance.Notifier
	if conf.Notify.Absences {
		notifier = notify.NewAbsenceNotifier(studentRepo, parentRepo, academicRepo, mailSvc)
	}

	tplSvc := field.NewService(inmemdb.NewTemplateRepository(db))
	studentSvc := student.NewService(studentRepo, dir, tplSvc)
	teacherSvc := teacher.NewService(inmemdb.NewTeacherRepository(db), dir, tplSvc)
	parentSvc := parent.NewService(parentRepo, studentRepo, tplSvc)
	managerSvc := manager.NewService(inmemdb.NewManagerRepository(db), tplSvc)
	academicSvc := academic.NewService(academicRepo, dir)
	attendanceSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db), dir, notifier, logger)
	examSvc := exam.NewService(inmemdb.NewExamRepository(db), dir)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(conf, appfs.FS, logger)

	seeder := seed.NewSeeder(appfs.FS, seed.Services{
		Templates: tplSvc,
		Academic:  academicSvc,
		Students:  studentSvc,
		Teachers:  teacherSvc,
		Parents:   parentSvc,
		Managers:  managerSvc,
		Exams:     examSvc,
	}, dbLogger)
	if err = seeder.InstallTemplates(context.Background()); err != nil {
		dbLogger.Fatal(fmt.Sprintf("installing templates: %v", err), err)
	}
	if conf.Seed.Demo {
		if err = seeder.LoadDemo(context.Background()); err != nil {
			dbLogger.Fatal(fmt.Sprintf("loading demo data: %v", err), err)
		}
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	accessLog := logger.Zerolog()
	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			AccessLog:     &accessLog,
			TemplateSvc:   tplSvc,
			StudentSvc:    studentSvc,
			TeacherSvc:    teacherSvc,
			ParentSvc:     parentSvc,
			ManagerSvc:    managerSvc,
			AcademicSvc:   academicSvc,
			AttendanceSvc: attendanceSvc,
			ExamSvc:       examSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
