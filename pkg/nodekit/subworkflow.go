package nodekit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// WorkflowDefinition is a stored workflow as loaded for nested execution
type WorkflowDefinition struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Nodes []any          `json:"nodes"`
	Edges map[string]any `json:"connections"`
}

// WorkflowStore loads workflow definitions by id
type WorkflowStore interface {
	LoadWorkflow(ctx context.Context, id string) (*WorkflowDefinition, error)
}

// WorkflowRunner runs a workflow synchronously and returns its final items
type WorkflowRunner interface {
	RunWorkflow(ctx context.Context, wf *WorkflowDefinition, executionID string, input []Item) ([]Item, error)
}

var ErrNoWorkflowRunner = errors.New("sub-workflow execution requires a workflow store and runner")

// ExecuteSubWorkflow loads workflowID and runs it with a fresh execution id.
// Returned items carry the id under "_executionId".
func ExecuteSubWorkflow(ctx context.Context, store WorkflowStore, runner WorkflowRunner, workflowID string, input []Item) ([]Item, string, error) {
	if store == nil || runner == nil {
		return nil, "", ErrNoWorkflowRunner
	}
	if workflowID == "" {
		return nil, "", &MissingParameterError{Name: "workflowId"}
	}
	wf, err := store.LoadWorkflow(ctx, workflowID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
	}
	executionID := uuid.NewString()
	items, err := runner.RunWorkflow(ctx, wf, executionID, input)
	if err != nil {
		return nil, executionID, fmt.Errorf("workflow %s (execution %s) failed: %w", workflowID, executionID, err)
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		next := it.Clone()
		next.JSON["_executionId"] = executionID
		out = append(out, next)
	}
	return out, executionID, nil
}
