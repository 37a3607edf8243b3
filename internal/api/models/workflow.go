package models

import (
	"time"

	"gorm.io/gorm"
)

// Workflow is a stored workflow that sub-workflow adapters load by id
type Workflow struct {
	ID          string         `gorm:"primaryKey;column:id"`
	Name        string         `gorm:"not null;column:name"`
	Nodes       []any          `gorm:"type:jsonb;serializer:json;column:nodes"`
	Connections map[string]any `gorm:"type:jsonb;serializer:json;column:connections"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (Workflow) TableName() string {
	return "workflows"
}

// Credential holds the values of one credential type
type Credential struct {
	ID             uint           `gorm:"primaryKey"`
	CredentialType string         `gorm:"uniqueIndex;not null;column:credential_type"`
	Data           map[string]any `gorm:"type:jsonb;serializer:json;column:data"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime;column:updated_at"`
}

func (Credential) TableName() string {
	return "credentials"
}
