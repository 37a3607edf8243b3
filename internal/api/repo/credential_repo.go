package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/models"
	"github.com/manarouei/agent-skills-sub004/pkg/nodekit"
)

// CredentialRepository is the database-backed nodekit.CredentialStore.
// Rows are read on every call.
type CredentialRepository struct {
	Db *gorm.DB
}

var _ nodekit.CredentialStore = (*CredentialRepository)(nil)

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{Db: skills.DB}
}

// Save inserts the credential or replaces the data of its type
func (slf *CredentialRepository) Save(cred *models.Credential) error {
	return slf.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "credential_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(cred).Error
}

func (slf *CredentialRepository) GetCredentials(ctx context.Context, typeName string) (nodekit.Credentials, error) {
	var cred models.Credential
	err := slf.Db.WithContext(ctx).Where("credential_type = ?", typeName).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &nodekit.CredentialNotFoundError{Type: typeName}
	}
	if err != nil {
		return nil, err
	}
	out := make(nodekit.Credentials, len(cred.Data))
	for k, v := range cred.Data {
		out[k] = v
	}
	return out, nil
}
