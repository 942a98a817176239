package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/flowd-sh/flowd/pkg/cmd"
	"github.com/flowd-sh/flowd/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "flowd-worker",
		Usage:                 "Execute workflows from the event bus",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "kafka",
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

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing flowd worker")

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
				command.String("event-bus"), command.String("kafka-brokers"), "cg-flowd-worker")
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

			worker, err := NewWorker(ctx, workerID, logger, persistence, registry, collaborators, eventBus, command.String("redis-url"))
			if err != nil {
				return err
			}

			if err := worker.Start(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to start worker", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
