package cmd

import (
	"log/slog"

	"github.com/flowd-sh/flowd/pkg/collaborators"
	"github.com/flowd-sh/flowd/pkg/persistence"
	"github.com/flowd-sh/flowd/pkg/persistence/postgresql"
	"github.com/flowd-sh/flowd/pkg/protocol"
)

// CollaboratorConfig carries the external service settings shared by the
// flowd binaries.
type CollaboratorConfig struct {
	EmailRelayURL string
	EmailAPIKey   string
	EmailFrom     string
	AIBaseURL     string
	AIAPIKey      string
}

// NewCollaborators wires the collaborator bundle node executors run against.
// Task and record storage ride the PostgreSQL connection when one is
// configured, otherwise they fall back to in-memory stores.
func NewCollaborators(logger *slog.Logger, persist persistence.Persistence, cfg CollaboratorConfig) *protocol.Collaborators {
	bundle := &protocol.Collaborators{
		Email:    collaborators.NewRelayEmailSender(logger, cfg.EmailRelayURL, cfg.EmailAPIKey, cfg.EmailFrom),
		Webhooks: collaborators.NewHTTPWebhookClient(logger),
		AI:       collaborators.NewHTTPAIProvider(logger, cfg.AIBaseURL, cfg.AIAPIKey),
	}

	if pg, ok := persist.(*postgresql.Persistence); ok {
		bundle.Tasks = postgresql.NewTaskStore(pg.DB(), logger)
		bundle.Records = postgresql.NewRecordStore(pg.DB(), logger)
	} else {
		bundle.Tasks = collaborators.NewLocalTaskStore()
		bundle.Records = collaborators.NewLocalRecordStore()
	}

	return bundle
}
