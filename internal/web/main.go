// Package web builds the fiber application: middleware chain, routes and templates.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	accesslog "github.com/simple-bulletin/simple-bulletin/internal/logger/adapter/fiber"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/api"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/board"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/item"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/login"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/logout"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/moderator"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/profile"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/register"
)

const (
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"

	// StaticPath serves the embedded static files.
	StaticPath = "/static"

	csrfCookieName = "csrf_"
	csrfExpiration = time.Hour
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	deps         *handler.Deps
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the http server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.deps.Cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.deps.Cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the check alive endpoint answers OK.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates the web service. The middleware order is: access log, recover, request deadline,
// CSRF verification, identity. CSRF is verified before anything reads the database.
func New(deps *handler.Deps) (*Service, error) {
	if err := deps.Check(); err != nil {
		return nil, err
	}

	cfg := deps.Cfg

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          newTemplateEngine(cfg.DevMode),
			ErrorHandler:   handler.NewErrorHandler(cfg.Title),
			JSONEncoder:    json.Marshal,
			JSONDecoder:    json.Unmarshal,
		},
	)

	service := &Service{
		App:          app,
		deps:         deps,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Use(accesslog.New(accesslog.Config{
		Config:          cfg.Log,
		CheckAliveURI:   cfg.Webserver.CheckAliveURI,
		UserIDLocalsKey: auth.LocalsUserID,
	}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Get(cfg.Webserver.CheckAliveURI, func(c *fiber.Ctx) error {
		if !service.Alive() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// serve embedded static files
	app.Use(StaticPath,
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Use(requestDeadline(cfg.DB.AcquireTimeout))
	app.Use(NewCSRF(deps, !cfg.DevMode))
	app.Use(auth.Identify(deps.Auth, deps.Sessions))

	services := []handler.Service{
		&login.Service{},
		&logout.Service{},
		&register.Service{},
		&item.Service{},
		&profile.Service{},
		&moderator.Service{},
		&api.Service{},
		&board.Service{},
	}

	for _, h := range services {
		if err := h.Init(app, deps); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	app.Use(func(*fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	return service, nil
}

// NewCSRF returns the CSRF middleware. Tokens live in the session and are sent back in the
// csrf_token form field; any unsafe request without a matching token ends with 403.
func NewCSRF(deps *handler.Deps, secure bool) fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:" + handler.CSRFField,
		CookieName:     csrfCookieName,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		Expiration:     csrfExpiration,
		KeyGenerator:   utils.UUIDv4,
		Session:        deps.Sessions.Store(),
		ContextKey:     handler.CSRFContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Warn().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("csrf check failed")

			return fiber.ErrForbidden
		},
	})
}

// requestDeadline bounds the database work of one request, including waiting for a pooled connection.
func requestDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		c.SetUserContext(ctx)

		return c.Next()
	}
}

func newTemplateEngine(devMode bool) *html.Engine {
	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if devMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("date", func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	})
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})

	return templateEngine
}
