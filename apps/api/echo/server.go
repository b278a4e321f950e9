package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/thaimooc/platform/core"
	"github.com/thaimooc/platform/core/content"
	"github.com/thaimooc/platform/core/course"
	"github.com/thaimooc/platform/core/institution"
	"github.com/thaimooc/platform/core/site"
	"github.com/thaimooc/platform/core/support"
	"github.com/thaimooc/platform/core/user"
)

type (
	// ServerDeps are all the dependencies the API server needs; main wires
	// them up.
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		InstitutionSvc *institution.Service
		CourseSvc      *course.Service
		ContentSvc     *content.Service
		SupportSvc     *support.Service
		UserSvc        *user.Service
		Assembler      *site.Assembler
		Files          core.FileStore
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerSiteAPI(v1, s.deps.Assembler, s.deps.SupportSvc, s.deps.Files)
	registerAdminAPI(v1, jwt, &s.deps)
	registerUserAPI(v1, jwt, s.deps.UserSvc, conf)
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

// Errors reports a failed listener; the server is not recoverable after one.
func (s *Server) Errors() <-chan error { return s.errs }

// ShutdownSignal delivers OS interrupts and internal shutdown requests.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// signalShutdown requests a graceful stop; used when an integrity error is
// caught by the error handler.
func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ThaiMOOC Platform API!")
}
