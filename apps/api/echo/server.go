package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/facexem/backend/core"
	"github.com/facexem/backend/core/admin"
	"github.com/facexem/backend/core/author"
	"github.com/facexem/backend/core/catalog"
	"github.com/facexem/backend/core/user"
)

type ServerDeps struct {
	Conf       *core.Config
	Logger     core.Logger
	AdminSvc   *admin.Service
	UserSvc    *user.Service
	CatalogSvc *catalog.Service
	AuthorSvc  *author.Service
	Validate   *validator.Validate
	Translator ut.Translator
}

type Server interface {
	http.Handler
	Start()
	Shutdown(ctx context.Context) error
	Close() error
	Errors() <-chan error
	ShutdownSignal() <-chan os.Signal
}

type server struct {
	deps ServerDeps
	app  *echo.Echo

	// errs receives the listener's exit error; shutdown receives OS
	// signals and internally raised shutdown requests.
	errs     chan error
	shutdown chan os.Signal
}

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.Pre(middleware.RemoveTrailingSlash())

	s.app.Use(session.Middleware(sessions.NewCookieStore([]byte(conf.SecretKey))))
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)

	s.app.GET("/", s.home)

	api := s.app.Group("/api")
	registerAdminAPI(api.Group("/admin"), adminAPI{
		adminSvc:   s.deps.AdminSvc,
		userSvc:    s.deps.UserSvc,
		catalogSvc: s.deps.CatalogSvc,
		authorSvc:  s.deps.AuthorSvc,
		validate:   s.deps.Validate,
	})
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Facexem API!")
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.app.ServeHTTP(w, r) }

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		s.errs <- s.app.Start(s.deps.Conf.Server.Addr)
	}()
}

func (s *server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }
func (s *server) Close() error                       { return s.app.Close() }
func (s *server) Errors() <-chan error               { return s.errs }
func (s *server) ShutdownSignal() <-chan os.Signal   { return s.shutdown }

func (s *server) signalShutdown() { s.shutdown <- syscall.SIGTERM }
