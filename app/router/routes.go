// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"encoding/json"
	"log"
	"time"

	"github.com/applaud-app/applaud/app/dto"
	"github.com/applaud-app/applaud/app/handlers"
	"github.com/applaud-app/applaud/app/middleware"
	"github.com/applaud-app/applaud/config"
	"github.com/applaud-app/applaud/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app                *fiber.App
	cfg                *config.ProductionConfig
	counterHandler     handlers.CounterHandlerInterface
	testimonialHandler handlers.TestimonialHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	counterHandler handlers.CounterHandlerInterface,
	testimonialHandler handlers.TestimonialHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Applaud API",
		ServerHeader: "Applaud",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		// SSE connections outlive any sane write timeout, so streaming
		// responses rely on keepalives instead
		IdleTimeout: cfg.Server.IdleTimeout,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	return &FiberRouter{
		app:                app,
		cfg:                cfg,
		counterHandler:     counterHandler,
		testimonialHandler: testimonialHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Public surface, paths fixed by the original app
	r.app.Get("/", r.counterHandler.Home)
	r.app.Post("/increment", r.counterHandler.Increment)
	r.app.Get("/ping", r.counterHandler.Ping)
	r.app.Get("/counter/events", r.counterHandler.Events)

	if r.cfg.Server.EnableMetrics {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")
	api.Get("/health", r.healthCheck)

	api.Get("/testimonials", r.testimonialHandler.List)
	api.Post("/testimonials", r.testimonialHandler.Create)
	api.Post("/testimonials/:uuid/comments", r.testimonialHandler.AddComment)

	log.Println("Routes configured")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	r.app.Use(recover.New())
	r.app.Use(requestid.New(requestid.Config{Header: "X-Request-ID"}))
	r.app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	r.app.Use(middleware.Metrics())

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Security.AllowedOrigins,
		AllowMethods: r.cfg.Security.AllowedMethods,
		AllowHeaders: r.cfg.Security.AllowedHeaders,
		MaxAge:       r.cfg.Security.CORSMaxAge,
	}))

	// Rate limit by IP; the SSE endpoint is excluded since one long-lived
	// connection is the norm there
	r.app.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/counter/events" || c.Path() == "/api/v1/health"
		},
	}))
}

// healthCheck responds to liveness probes
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: map[string]string{
			"status":    "up",
			"timestamp": utils.UTCNowRFC3339(),
		},
	})
}

// Start begins listening on the given address
func (r *FiberRouter) Start(address string) error {
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber application
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// errorHandler is the global Fiber error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: "HTTP_ERROR",
		},
	})
}
