package protocol

import "context"

// Collaborators bundles the external services node executors depend on. It
// is injected into executor factories explicitly so tests can swap any
// collaborator for a fake and tenants can carry different provider handles.
type Collaborators struct {
	Email    EmailSender
	Tasks    TaskStore
	Records  RecordStore
	Webhooks WebhookClient
	AI       AIProvider
}

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string
	Description string
	AssignedTo  string
	DueDate     string
	Priority    string
}

// TaskStore creates tasks in the tenant's task backlog.
type TaskStore interface {
	CreateTask(ctx context.Context, tenantID string, task TaskInput) (string, error)
}

// RecordStore performs tenant-scoped updates on named records. Implementations
// must restrict the table argument to an allow-list.
type RecordStore interface {
	UpdateRecord(ctx context.Context, tenantID, table, recordID string, fields map[string]any) error
}

// WebhookResponse is the outcome of a webhook delivery.
type WebhookResponse struct {
	StatusCode int
	Body       any
}

// WebhookClient posts a JSON payload to an external URL.
type WebhookClient interface {
	Post(ctx context.Context, url string, body map[string]any, headers map[string]string) (*WebhookResponse, error)
}

// CompletionRequest is a single AI completion call.
type CompletionRequest struct {
	Prompt    string
	Model     string
	MaxTokens int
}

// AIProvider is a ready-to-use completion handle; API key resolution happens
// before the engine sees it.
type AIProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
