package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowd-sh/flowd/pkg/persistence"
	"github.com/flowd-sh/flowd/pkg/persistence/memory"
	"github.com/flowd-sh/flowd/pkg/persistence/postgresql"
)

// NewPersistence picks a persistence backend from the database URL scheme.
// An empty URL or memory:// selects the in-memory store, meant for local
// development only.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case databaseURL == "" || strings.HasPrefix(databaseURL, "memory://"):
		logger.WarnContext(ctx, "Using in-memory persistence, data will not survive restarts")

		return memory.NewPersistence(), nil
	case strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database URL: %s", databaseURL)
	}
}
