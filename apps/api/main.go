package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"

	echoapi "github.com/trezcool/schoolsaas/apps/api/echo"
	"github.com/trezcool/schoolsaas/apps/shared"
	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/finance"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/notice"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/user"
	emailsvc "github.com/trezcool/schoolsaas/services/email"
	logsvc "github.com/trezcool/schoolsaas/services/logger"
	"github.com/trezcool/schoolsaas/services/telemetry"
	"github.com/trezcool/schoolsaas/storage/database"
	"github.com/trezcool/schoolsaas/storage/database/gormdb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	db, gdb, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	refs := gormdb.NewRefChecker(gdb)
	usrSvc := user.NewService(gormdb.NewUserRepository(gdb), mailSvc, conf, logger)
	peopleSvc := people.NewService(gormdb.PeopleStores(gdb), usrSvc, refs)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := shared.NewValidator()
	core.ParseEmailTemplates(conf, logger)

	var metrics *telemetry.Metrics
	tracer, err := setUpTracing(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up tracing: %v", err), err)
	}
	if conf.Telemetry.Enabled {
		metrics = telemetry.NewMetrics("schoolsaas")
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background(), tracer); err != nil {
			logger.Error(fmt.Sprintf("flushing traces: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics, when telemetry is enabled.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	if metrics != nil {
		http.DefaultServeMux.Handle("/metrics", metrics.Handler())
	}

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			Validate:    validate,
			Translator:  translator,
			UserSvc:     usrSvc,
			SchoolSvc:   school.NewService(gormdb.SchoolStores(gdb), refs),
			PeopleSvc:   peopleSvc,
			AcademicSvc: academic.NewService(gormdb.AcademicStores(gdb), refs),
			FinanceSvc:  finance.NewService(gormdb.FinanceStores(gdb), peopleSvc, refs),
			MeetingSvc:  meeting.NewService(gormdb.MeetingStores(gdb), refs),
			NoticeSvc:   notice.NewService(gormdb.NoticeStores(gdb), refs),
			Metrics:     metrics,
			Tracer:      tracer,
		},
	)

	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Address()))
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

func setUpDB(conf *core.Config) (*sql.DB, *gorm.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, err
	}

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		return nil, nil, err
	}

	gdb, err := database.OpenGorm(db, conf.Database.Engine, conf)
	if err != nil {
		return nil, nil, err
	}
	return db, gdb, nil
}

func setUpTracing(conf *core.Config) (*sdktrace.TracerProvider, error) {
	if !conf.Telemetry.Enabled {
		return nil, nil
	}
	return telemetry.NewTracerProvider(conf, os.Stderr)
}
