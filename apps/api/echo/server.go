package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/account"
	"github.com/edubridge/backend/core/auth"
	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/progress"
	"github.com/edubridge/backend/core/student"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		TokenSvc    *auth.TokenService
		OTPIssuer   auth.OTPIssuer
		SMSSvc      core.SMSService
		StudentSvc  *student.Service
		AccountSvc  *account.Service
		CourseSvc   *course.Service
		ProgressSvc *progress.Service
		BadgeSvc    *badge.Service

		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.app.Group("/v1")
	bearer := bearerMiddleware(s.opts.TokenSvc)

	registerAuthAPI(v1, bearer, s.opts)
	registerUsersAPI(v1, bearer, s.opts)
	registerCourseAPI(v1, bearer, s.opts)
	registerProgressAPI(v1, bearer, s.opts)
	registerRewardsAPI(v1, bearer, s.opts)
	registerParentAPI(v1, bearer, s.opts)
	registerLeaderboardAPI(v1, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	go func() { _ = s.Stop(context.Background()) }()
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to EduBridge API!")
}
