package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/access"
	"github.com/coursebox/backend/core/coursecontent"
	"github.com/coursebox/backend/core/dashboard"
	"github.com/coursebox/backend/core/exam"
	"github.com/coursebox/backend/core/examresult"
	"github.com/coursebox/backend/core/examtopic"
	"github.com/coursebox/backend/core/lesson"
	"github.com/coursebox/backend/core/registereduser"
)

type (
	Deps struct {
		Conf          *core.Config
		Logger        core.Logger
		Access        *access.Controller
		LessonSvc     *lesson.Service
		ExamSvc       *exam.Service
		ResultSvc     *examresult.Service
		UserSvc       *registereduser.Service
		ContentSvc    *coursecontent.Service
		TopicSvc      *examtopic.Service
		DashboardSvc  *dashboard.Service
		DisableReqLog bool
	}

	Server interface {
		http.Handler
		Start() error
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		addr       string
		deps       *Deps
		app        *echo.Echo
		jwtConf    middleware.JWTConfig
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Server = (*server)(nil)

// NewServer builds the API server. signalShutdown is called when a handler fails with a
// core.IsShutdown error.
func NewServer(addr string, signalShutdown func(), deps *Deps) Server {
	if deps.Logger == nil {
		deps.Logger = core.NopLogger()
	}
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	s := &server{
		addr:    addr,
		deps:    deps,
		app:     echo.New(),
		jwtConf: newJWTConfig(deps.Conf.SecretKey),
	}
	s.validate, s.translator = core.NewValidator()
	s.setup(signalShutdown)
	return s
}

func (s *server) setup(signalShutdown func()) {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !(s.deps.DisableReqLog || conf.TestMode) {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.translator, signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", s.home)

	g := s.app.Group("/api", middleware.JWTWithConfig(s.jwtConf), identityMiddleware(s.deps.Access))

	s.registerUserAPI(g.Group("/registered-users"))
	s.registerLessonAPI(g.Group("/lessons"))
	s.registerExamAPI(g.Group("/exams"))
	s.registerResultAPI(g.Group("/exam-results"))
	s.registerContentAPI(g.Group("/course-content"))
	s.registerTopicAPI(g.Group("/exam-topics"))
	s.registerDashboardAPI(g.Group("/dashboard"))
}

func (s *server) Start() error {
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
