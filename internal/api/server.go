package api

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/logger"
)

const apiKeyHeader = "X-API-Key"

// ApplicationStore is the part of db.ApplicationRepository the console uses.
type ApplicationStore interface {
	GetByID(id int64) (*db.Application, error)
	ListByStatus(status string, limit int) ([]db.Application, error)
	UpdateStatus(id int64, status string, reason *string) error
	ListDocuments(applicationID int64) ([]db.ApplicationDocument, error)
	GetDocument(applicationID, documentID int64) (*db.ApplicationDocument, error)
}

// Notifier tells an applicant about a decision.
type Notifier interface {
	Notify(telegramUserID int64, status, reason string) error
}

type (
	Options struct {
		Address        string
		APIKey         string
		Debug          bool
		DisableReqLogs bool

		Store ApplicationStore
		// Notifier may be nil; decisions are then only stored.
		Notifier Notifier
		Log      logger.Logger
	}

	Server interface {
		http.Handler
		Start() error
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
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.opts.Log)
	s.app.Validator = requestValidator{}
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1", middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + apiKeyHeader,
		Validator: s.checkKey,
	}))

	registerApplicationAPI(v1, s.opts.Store, s.opts.Notifier, s.opts.Log)
	registerSurveyAPI(v1)
}

func (s *server) checkKey(key string, _ echo.Context) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.APIKey)) == 1, nil
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *server) Start() error {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server.Start")
	}
	return nil
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Aid documents console API")
}
