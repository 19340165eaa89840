package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	recoverer "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lexiapi/docs"
	"lexiapi/internal/config"
	"lexiapi/internal/extractor"
	"lexiapi/internal/gemini"
	"lexiapi/internal/generator"
	handlers "lexiapi/internal/http/handler"
	"lexiapi/internal/http/middleware"
	"lexiapi/internal/resilience"
	"lexiapi/internal/service"
	"lexiapi/internal/storage"
)

const defaultMaxUploadMB = 20

// listenAddr joins the bind host and port; an empty host binds every interface.
func listenAddr(cfg *config.AppConfig) string {
	return net.JoinHostPort(cfg.AppHost, cfg.Port)
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return storage.NewLocal(cfg.LocalPath)
	case "minio":
		return storage.NewMinIO(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

type collaborators struct {
	extractor extractor.Extractor
	generator generator.Generator
	client    *genai.Client
}

func (c *collaborators) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}

// newCollaborators builds the extraction and generation clients, each behind guard.
// One Gemini client is shared when either provider needs it.
func newCollaborators(ctx context.Context, cfg *config.AppConfig, guard *resilience.Guard) (*collaborators, error) {
	out := &collaborators{}

	geminiModels := func() (gemini.ModelFactory, error) {
		if out.client == nil {
			client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey)
			if err != nil {
				return nil, err
			}
			out.client = client
		}
		return gemini.Factory(out.client), nil
	}

	var ext extractor.Extractor
	switch strings.ToLower(cfg.Extractor.Provider) {
	case "", "local":
		ext = extractor.NewLocal()
	case "gemini":
		models, err := geminiModels()
		if err != nil {
			return nil, fmt.Errorf("extractor: %w", err)
		}
		ext = extractor.NewGemini(models, cfg.Extractor.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown extractor provider %q", cfg.Extractor.Provider)
	}

	var gen generator.Generator
	switch strings.ToLower(cfg.Generator.Provider) {
	case "", "gemini":
		models, err := geminiModels()
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("generator: %w", err)
		}
		gen = generator.NewGemini(models, cfg.Generator.GeminiModel)
	case "ollama":
		llm, err := generator.NewOllama(cfg.Generator.OllamaURL, cfg.Generator.OllamaModel, &http.Client{})
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("generator: %w", err)
		}
		gen = llm
	default:
		out.Close()
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}

	out.extractor = extractor.WithGuard(ext, guard)
	out.generator = generator.WithGuard(gen, guard)
	return out, nil
}

func newApp(cfg *config.AppConfig, log *slog.Logger, reg *prometheus.Registry, db handlers.Pinger, docSvc service.DocumentService) (*fiber.App, error) {
	maxUploadMB := cfg.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}

	app := fiber.New(fiber.Config{
		AppName:      "lexiapi",
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    maxUploadMB << 20,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	// Register global middleware
	app.Use(recoverer.New())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.RequestIDHeader,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, docSvc)

	// An empty host and scheme list make the UI target whichever host served it.
	app.Get("/swagger/*", swagger.New(swagger.Config{InstanceName: docs.SwaggerInfo.InstanceName()}))

	return app, nil
}
