package models

import (
	"time"
)

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ConversionRun is one batch conversion started through the API
type ConversionRun struct {
	ID         uint       `gorm:"primaryKey"`
	RunID      string     `gorm:"uniqueIndex;not null;column:run_id"`
	Root       string     `gorm:"not null;column:root"`
	Pattern    string     `gorm:"column:pattern"`
	OutputDir  string     `gorm:"column:output_dir"`
	Status     RunStatus  `gorm:"not null;column:status"`
	Converted  int        `gorm:"column:converted"`
	Failed     int        `gorm:"column:failed"`
	Error      string     `gorm:"type:text;column:error"`
	StartedBy  string     `gorm:"column:started_by"`
	StartedAt  time.Time  `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime;column:updated_at"`
}

func (ConversionRun) TableName() string {
	return "conversion_runs"
}
