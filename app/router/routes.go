// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"errors"
	"strings"
	"time"

	"github.com/appestoicismo/newsllater/app/dto"
	"github.com/appestoicismo/newsllater/app/handlers"
	"github.com/appestoicismo/newsllater/app/middleware"
	businessflow "github.com/appestoicismo/newsllater/business_flow"
	"github.com/appestoicismo/newsllater/config"
	applog "github.com/appestoicismo/newsllater/logger"
	"github.com/appestoicismo/newsllater/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthPath = "/api/health"

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app               *fiber.App
	cfg               *config.ProductionConfig
	newsletterHandler handlers.NewsletterHandlerInterface
	audienceHandler   handlers.AudienceHandlerInterface
	settingsHandler   handlers.SettingsHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	newsletterHandler handlers.NewsletterHandlerInterface,
	audienceHandler handlers.AudienceHandlerInterface,
	settingsHandler handlers.SettingsHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Newsletter Generator API",
		ServerHeader: "newsllater",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Upload.BodyLimit(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	return &FiberRouter{
		app:               app,
		cfg:               cfg,
		newsletterHandler: newsletterHandler,
		audienceHandler:   audienceHandler,
		settingsHandler:   settingsHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	applog.Info("setting up routes")

	// Global middleware
	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:          r.cfg.Security.GlobalRateLimit,
		Expiration:   r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string { return c.IP() },
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthPath
		},
	}))

	// Newsletters
	newsletters := api.Group("/newsletters")
	generateLimiter := limiter.New(limiter.Config{
		Max:          r.cfg.Security.GenerateRateLimit,
		Expiration:   r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string { return c.IP() },
		LimitReached: rateLimitReached,
	})
	newsletters.Post("/generate", generateLimiter, r.newsletterHandler.Generate)
	newsletters.Get("/", r.newsletterHandler.List)
	newsletters.Get("/export.xlsx", r.newsletterHandler.ExportHistory)
	newsletters.Get("/:id", r.newsletterHandler.Get)
	newsletters.Get("/:id/export", r.newsletterHandler.Export)
	newsletters.Put("/:id", r.newsletterHandler.Update)
	newsletters.Delete("/:id", r.newsletterHandler.Delete)

	// Audiences
	audiences := api.Group("/audiences")
	audiences.Post("/", r.audienceHandler.Create)
	audiences.Get("/", r.audienceHandler.List)
	audiences.Get("/:id", r.audienceHandler.Get)
	audiences.Put("/:id", r.audienceHandler.Update)
	audiences.Delete("/:id", r.audienceHandler.Delete)

	// Settings
	settings := api.Group("/settings")
	settings.Get("/", r.settingsHandler.GetAll)
	settings.Post("/", r.settingsHandler.UpdateMany)
	settings.Post("/single", r.settingsHandler.UpdateOne)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	applog.Info("routes configured")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			applog.Get().Error("panic recovered",
				"request_id", requestid.FromContext(c),
				"error", e,
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP(),
			)
		},
	}))

	r.app.Use(middleware.Metrics())

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             r.cfg.Security.XFrameOptions,
		ContentSecurityPolicy:     r.cfg.Security.CSPPolicy,
		ReferrerPolicy:            r.cfg.Security.ReferrerPolicy,
		CrossOriginResourcePolicy: "cross-origin",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{fiber.HeaderXRequestID, fiber.HeaderContentDisposition},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				// Workbooks are already zip archives
				return strings.HasSuffix(c.Path(), ".xlsx")
			},
		}))
	}

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     applog.Writer(),
			Next: func(c fiber.Ctx) bool {
				return c.Path() == healthPath
			},
		}))
	}
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	applog.Info("starting server", "address", address)
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Format(time.RFC3339),
			"version":   r.cfg.Deployment.Version,
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Error:   "Route not found",
		Code:    "NOT_FOUND",
		Details: fiber.Map{
			"path":       c.Path(),
			"method":     c.Method(),
			"request_id": requestid.FromContext(c),
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Error:   "Too many requests. Please try again later.",
		Code:    "RATE_LIMIT_EXCEEDED",
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	errorCode := "INTERNAL_ERROR"
	message := "An internal server error occurred"

	// Retrieve the custom status code if it's a fiber.*Error
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		if code < fiber.StatusInternalServerError {
			errorCode = businessflow.CodeValidation
		}
	}

	if code >= fiber.StatusInternalServerError {
		applog.Error("request failed", err, "status", code, "path", c.Path())
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Error:   message,
		Code:    errorCode,
		Details: fiber.Map{
			"timestamp":  utils.UTCNow().Unix(),
			"request_id": requestid.FromContext(c),
		},
	})
}
