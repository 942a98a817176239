// Package action provides the action node executor: side-effecting work
// dispatched on the node's configured action name.
package action

import (
	"context"
	"fmt"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/flowd-sh/flowd/pkg/template"
)

type ActionNode struct {
	collaborators *protocol.Collaborators
}

func NewActionNode(collaborators *protocol.Collaborators) *ActionNode {
	return &ActionNode{collaborators: collaborators}
}

// Execute sub-dispatches on data.action. Unknown action names are a fatal
// node execution error.
func (n *ActionNode) Execute(ctx context.Context, execCtx *models.ExecutionContext, node *models.Node) (map[string]any, error) {
	actionName, _ := node.Data["action"].(string)
	config, _ := node.Data["config"].(map[string]any)

	if config == nil {
		config = make(map[string]any)
	}

	switch actionName {
	case models.ActionSendEmail:
		return n.sendEmail(ctx, execCtx, config)
	case models.ActionCreateTask:
		return n.createTask(ctx, execCtx, config)
	case models.ActionUpdateRecord:
		return n.updateRecord(ctx, execCtx, config)
	case models.ActionWebhook:
		return n.webhook(ctx, execCtx, config)
	case models.ActionWaitForInput:
		return n.waitForInput(config)
	default:
		return nil, fmt.Errorf("unknown action type %q for node %s", actionName, node.ID)
	}
}

func (n *ActionNode) sendEmail(ctx context.Context, execCtx *models.ExecutionContext, config map[string]any) (map[string]any, error) {
	to := n.render(config, "to", execCtx)
	subject := n.render(config, "subject", execCtx)
	body := n.render(config, "body", execCtx)

	err := n.collaborators.Email.Send(ctx, to, subject, body)
	if err != nil {
		return nil, fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return map[string]any{
		"email_sent": true,
		"recipient":  to,
	}, nil
}

func (n *ActionNode) createTask(ctx context.Context, execCtx *models.ExecutionContext, config map[string]any) (map[string]any, error) {
	task := protocol.TaskInput{
		Title:       n.render(config, "title", execCtx),
		Description: n.render(config, "description", execCtx),
		AssignedTo:  n.render(config, "assigned_to", execCtx),
		DueDate:     n.render(config, "due_date", execCtx),
		Priority:    n.render(config, "priority", execCtx),
	}

	taskID, err := n.collaborators.Tasks.CreateTask(ctx, execCtx.TenantID, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return map[string]any{
		"task_id":      taskID,
		"task_created": true,
	}, nil
}

func (n *ActionNode) updateRecord(ctx context.Context, execCtx *models.ExecutionContext, config map[string]any) (map[string]any, error) {
	table, _ := config["table"].(string)
	recordID := n.render(config, "record_id", execCtx)

	fields := make(map[string]any)

	if raw, ok := config["fields"].(map[string]any); ok {
		for key, value := range raw {
			if str, ok := value.(string); ok {
				fields[key] = template.Interpolate(str, execCtx.Variables)
			} else {
				fields[key] = value
			}
		}
	}

	err := n.collaborators.Records.UpdateRecord(ctx, execCtx.TenantID, table, recordID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s record %s: %w", table, recordID, err)
	}

	return map[string]any{
		"record_updated": true,
		"record_id":      recordID,
	}, nil
}

func (n *ActionNode) webhook(ctx context.Context, execCtx *models.ExecutionContext, config map[string]any) (map[string]any, error) {
	url := n.render(config, "url", execCtx)

	body := make(map[string]any)

	if payload, ok := config["payload"].(map[string]any); ok {
		for key, value := range payload {
			body[key] = value
		}
	}

	body["workflow_data"] = execCtx.Variables

	headers := make(map[string]string)

	if raw, ok := config["headers"].(map[string]any); ok {
		for key, value := range raw {
			if str, ok := value.(string); ok {
				headers[key] = str
			}
		}
	}

	response, err := n.collaborators.Webhooks.Post(ctx, url, body, headers)
	if err != nil {
		return nil, fmt.Errorf("webhook call to %s failed: %w", url, err)
	}

	return map[string]any{
		"webhook_response": response.Body,
		"status_code":      response.StatusCode,
	}, nil
}

// waitForInput records the pause request without actually suspending the
// execution. Durable pause/resume needs persisted checkpoints and an external
// resume signal, which this engine does not implement.
func (n *ActionNode) waitForInput(config map[string]any) (map[string]any, error) {
	inputType, _ := config["input_type"].(string)

	return map[string]any{
		"waiting_for_input": true,
		"input_type":        inputType,
	}, nil
}

func (n *ActionNode) render(config map[string]any, key string, execCtx *models.ExecutionContext) string {
	raw, _ := config[key].(string)

	return template.Interpolate(raw, execCtx.Variables)
}
