package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/models"
	"github.com/manarouei/agent-skills-sub004/pkg/nodekit"
)

var ErrWorkflowNotFound = errors.New("workflow not found")

// WorkflowRepository is the database-backed nodekit.WorkflowStore
type WorkflowRepository struct {
	Db *gorm.DB
}

var _ nodekit.WorkflowStore = (*WorkflowRepository)(nil)

func NewWorkflowRepository() *WorkflowRepository {
	return &WorkflowRepository{Db: skills.DB}
}

func (slf *WorkflowRepository) Save(wf *models.Workflow) error {
	return slf.Db.Save(wf).Error
}

func (slf *WorkflowRepository) LoadWorkflow(ctx context.Context, id string) (*nodekit.WorkflowDefinition, error) {
	var wf models.Workflow
	err := slf.Db.WithContext(ctx).Where("id = ?", id).First(&wf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &nodekit.WorkflowDefinition{
		ID:    wf.ID,
		Name:  wf.Name,
		Nodes: wf.Nodes,
		Edges: wf.Connections,
	}, nil
}
