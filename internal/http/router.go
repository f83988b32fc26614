package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fileforge/internal/config"
	"fileforge/internal/jobs"
	"fileforge/internal/metrics"
)

type Server struct {
	app    *fiber.App
	config *config.Config
	orch   *jobs.Orchestrator
	logger *slog.Logger
}

func NewServer(cfg *config.Config, orch *jobs.Orchestrator, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadBytes()) + 1024*1024,
	})

	// Inject config and orchestrator into context for handlers
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("orchestrator", orch)
		return c.Next()
	})

	// Request logging + metrics middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		// Ensure a request ID exists
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)
		if logger != nil {
			c.Locals("logger", logger)
		}

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		if logger != nil {
			logger.Info("request",
				"request_id", reqID,
				"method", method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}

		return err
	})

	// Redis client for rate limiting and health checks
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if opt, err := redis.ParseURL(cfg.Redis.URL); err == nil {
			rdb = redis.NewClient(opt)
		}
	}

	// Health endpoint
	app.Get("/healthz", func(c *fiber.Ctx) error {
		redisStatus := "disabled"
		if rdb != nil {
			if err := rdb.Ping(c.Context()).Err(); err != nil {
				redisStatus = "error"
			} else {
				redisStatus = "ok"
			}
		}
		return c.JSON(fiber.Map{
			"status": "ok",
			"redis":  redisStatus,
		})
	})

	// Prometheus-style metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Type("text/plain")
		return c.SendString(metrics.Export())
	})

	var rateMw fiber.Handler
	if rdb != nil {
		rateMw = rateLimitMiddleware(cfg, rdb)
	} else {
		rateMw = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api", rateMw)
	registerAPIRoutes(api)

	registerWebUIRoutes(app)

	return &Server{
		app:    app,
		config: cfg,
		orch:   orch,
		logger: logger,
	}
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.app.Listen(addr)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

func registerAPIRoutes(group fiber.Router) {
	group.Post("/upload", uploadHandler)
	group.Post("/convert", convertHandler)
	group.Get("/progress/:id", progressHandler)
	group.Get("/download/:id", downloadHandler)
	group.Get("/jobs", jobsListHandler)
	group.Get("/jobs/:id", jobDetailHandler)
	group.Delete("/jobs/:id", jobDeleteHandler)
	group.Get("/formats", formatsHandler)
}
