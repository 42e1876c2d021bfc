package echoapi

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/finance"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/notice"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/user"
	appfs "github.com/trezcool/schoolsaas/fs"
	"github.com/trezcool/schoolsaas/services/telemetry"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc     user.Service
		SchoolSvc   school.Service
		PeopleSvc   people.Service
		AcademicSvc academic.Service
		FinanceSvc  finance.Service
		MeetingSvc  meeting.Service
		NoticeSvc   notice.Service

		// optional
		Metrics *telemetry.Metrics
		Tracer  *sdktrace.TracerProvider
	}

	Server interface {
		http.Handler
		// Start listens until the server is shut down. Listening errors are sent on Errors.
		Start()
		Errors() <-chan error
		// ShutdownSignal receives SIGINT, SIGTERM and the shutdown requests of the error handler.
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		tokens   *Tokens
		home     *template.Template
		srv      *http.Server
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		tokens:   NewTokens(deps.Conf),
		home:     template.Must(template.ParseFS(appfs.FS, homeTemplate)),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()

	var handler http.Handler = s.app
	if deps.Tracer != nil {
		handler = telemetry.Trace(handler, deps.Tracer, "api")
	}
	s.srv = &http.Server{
		Addr:         deps.Conf.Server.Address(),
		Handler:      handler,
		ReadTimeout:  deps.Conf.Server.ReadTimeout,
		WriteTimeout: deps.Conf.Server.WriteTimeout,
		ErrorLog:     s.app.StdLogger,
	}
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Binder = strictBinder{}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.translate, shutdownSignaler(s.shutdown))

	s.app.Pre(middleware.RemoveTrailingSlash())
	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.Middleware())
	}
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{conf.FrontendURL},
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
		},
	}))

	s.app.GET("/", s.renderHome)

	prefix := ""
	if conf.APIPrefix != "" {
		prefix = "/" + conf.APIPrefix
	}
	g := s.app.Group(prefix)
	jwt := authMiddleware(s.tokens, s.deps.UserSvc, false)

	registerAuthAPI(g, jwt, authMiddleware(s.tokens, s.deps.UserSvc, true), s.tokens, s.deps.UserSvc, s.deps.Validate, s.deps.Logger)
	registerUserAPI(g, jwt, s.deps.UserSvc, s.deps.Validate)
	registerSchoolAPI(g, jwt, s.deps.SchoolSvc, s.deps.Validate)
	registerPeopleAPI(g, jwt, s.deps.PeopleSvc, s.deps.Validate)
	registerAcademicAPI(g, jwt, s.deps.AcademicSvc, s.deps.Validate)
	registerFinanceAPI(g, jwt, s.deps.FinanceSvc, s.deps.Validate)
	registerMeetingAPI(g, jwt, s.deps.MeetingSvc, s.deps.PeopleSvc, s.deps.Validate)
	registerNoticeAPI(g, jwt, s.deps.NoticeSvc, s.deps.Validate)
}

func (s *server) translate(vErrs validator.ValidationErrors) map[string]string {
	fldErrs := make(map[string]string, len(vErrs))
	for _, vErr := range vErrs {
		fldErrs[vErr.Field()] = vErr.Translate(s.deps.Translator)
	}
	return fldErrs
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.srv.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
