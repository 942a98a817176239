// Package main provides the flowd API server.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/redis/go-redis/v9"

	"github.com/flowd-sh/flowd/pkg/engine"
	"github.com/flowd-sh/flowd/pkg/eventbus"
	"github.com/flowd-sh/flowd/pkg/lease"
	"github.com/flowd-sh/flowd/pkg/otelhelper"
	"github.com/flowd-sh/flowd/pkg/persistence"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/flowd-sh/flowd/pkg/registry"
	"github.com/flowd-sh/flowd/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	supervisor  *engine.Supervisor
	validate    *validator.Validate
}

func NewAPI(
	ctx context.Context,
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	collaborators *protocol.Collaborators,
	eventBus eventbus.EventBus,
	redisURL string,
) (*API, error) {
	opts, err := supervisorOptions(ctx, redisURL)
	if err != nil {
		return nil, err
	}

	return &API{
		logger:      logger,
		persistence: persist,
		registry:    reg,
		supervisor:  engine.NewSupervisor(logger, persist, reg, collaborators, eventBus, opts...),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func supervisorOptions(ctx context.Context, redisURL string) ([]engine.SupervisorOption, error) {
	var opts []engine.SupervisorOption

	if redisURL != "" {
		redisOpts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}

		opts = append(opts, engine.WithLease(lease.NewRedisLease(redis.NewClient(redisOpts))))
	}

	tracer, err := otelhelper.NewTracer(ctx, "flowd")
	if err != nil {
		return nil, err
	}

	opts = append(opts, engine.WithTracer(tracer))

	return opts, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.logger, a.persistence, a.supervisor, a.registry, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("flowd API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
