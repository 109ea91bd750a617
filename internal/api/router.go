package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/modernforum/forum/docs"
	"github.com/modernforum/forum/internal/api/handler"
	"github.com/modernforum/forum/internal/api/middleware"
	"github.com/modernforum/forum/internal/api/view"
	"github.com/modernforum/forum/internal/core/ports"
	infrahttp "github.com/modernforum/forum/internal/infrastructure/http"
	"github.com/modernforum/forum/internal/infrastructure/http/handlers"
)

// Deps is everything the HTTP surface needs from the rest of the process.
type Deps struct {
	Auth     ports.AuthService
	Forum    ports.ForumService
	Sessions *middleware.Sessions
	Live     handler.LiveServer
	Checks   []handlers.Check
	Log      zerolog.Logger

	// Registry receives the HTTP request metrics. Nil means the default
	// Prometheus registry, which also carries the forum metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = view.MustRenderer()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	if d.Registry == nil {
		e.Use(echoprometheus.NewMiddleware("forum"))
		e.GET("/metrics", echoprometheus.NewHandler())
	} else {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "forum",
			Registerer: d.Registry,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	}
	e.Use(d.Sessions.Load())

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Sessions, d.Log)
	forumHandler := handler.NewForumHandler(d.Forum, d.Log)
	liveHandler := handler.NewLiveHandler(d.Live, d.Log)
	requireLogin := middleware.RequireLogin()

	// --- Pages ---
	e.GET("/", forumHandler.Index)
	e.GET("/register", authHandler.RegisterForm)
	e.POST("/register", authHandler.Register)
	e.GET("/login", authHandler.LoginForm)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)

	// --- Threads ---
	e.GET("/threads/new", forumHandler.NewThread, requireLogin)
	e.POST("/threads", forumHandler.CreateThread, requireLogin)
	e.GET("/threads/:id", forumHandler.ShowThread)
	e.POST("/threads/:id/posts", forumHandler.Reply, requireLogin)

	// --- Live channel ---
	e.GET("/ws", liveHandler.Serve)

	// --- Assets, docs and probes ---
	e.StaticFS("/public", view.Static())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	infrahttp.MountProbes(e, d.Checks...)

	return e
}
