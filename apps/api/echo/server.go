package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/catalog"
	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		UserSvc         user.Service
		SeminarSvc      seminar.Service
		PresenceSvc     presence.Service
		CatalogSvc      catalog.Service
		RegistrationSvc registration.Service

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

// SignalShutdown is called by the error handler on unrecoverable errors.
func (s *server) signalShutdown() {
	s.shutdown <- struct{}{}
}

// Shutdown returns a channel that receives when the server must stop.
func (s *server) Shutdown() <-chan struct{} {
	return s.shutdown
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newAppJWTConfig(conf))

	registerUserAPI(api, jwt, s.opts)
	registerSeminarAPI(api, jwt, s.opts)
	registerCatalogAPI(api, jwt, s.opts)
	registerPresenceAPI(api, jwt, s.opts)
	registerRegistrationAPI(api, jwt, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Seminarios API!")
}
