package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowd-sh/flowd/pkg/cmd"
	"github.com/flowd-sh/flowd/pkg/log"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowd-api",
		Usage:                 "Create and manage workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (memory:// for local development)",
				Value:   "memory://",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker addresses",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "email-relay-url",
				Usage:   "Base URL of the transactional email relay",
				Sources: cli.EnvVars("EMAIL_RELAY_URL"),
			},
			&cli.StringFlag{
				Name:    "email-api-key",
				Usage:   "API key for the email relay",
				Sources: cli.EnvVars("EMAIL_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "email-from",
				Usage:   "Sender address for workflow emails",
				Value:   "noreply@flowd.sh",
				Sources: cli.EnvVars("EMAIL_FROM"),
			},
			&cli.StringFlag{
				Name:    "ai-base-url",
				Usage:   "Base URL of the AI completion provider",
				Sources: cli.EnvVars("AI_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "ai-api-key",
				Usage:   "API key for the AI completion provider",
				Sources: cli.EnvVars("AI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for execution leases (optional)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing flowd API")

			registry := cmd.NewRegistry(logger)

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if closeErr := persistence.Close(ctx); closeErr != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", closeErr)
				}
			}()

			eventBus, err := cmd.NewEventBus(logger,
				command.String("event-bus"), command.String("kafka-brokers"), "cg-flowd-api")
			if err != nil {
				return err
			}

			defer func() {
				if closeErr := eventBus.Close(); closeErr != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", closeErr)
				}
			}()

			collaborators := cmd.NewCollaborators(logger, persistence, cmd.CollaboratorConfig{
				EmailRelayURL: command.String("email-relay-url"),
				EmailAPIKey:   command.String("email-api-key"),
				EmailFrom:     command.String("email-from"),
				AIBaseURL:     command.String("ai-base-url"),
				AIAPIKey:      command.String("ai-api-key"),
			})

			api, err := NewAPI(ctx, logger, persistence, registry, collaborators, eventBus, command.String("redis-url"))
			if err != nil {
				return err
			}

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
