package repo

import (
	"gorm.io/gorm"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/models"
)

type RunRepository struct {
	Db *gorm.DB
}

func NewRunRepository() *RunRepository {
	return &RunRepository{Db: skills.DB}
}

func (slf *RunRepository) Create(run *models.ConversionRun) error {
	return slf.Db.Create(run).Error
}

func (slf *RunRepository) Update(run *models.ConversionRun) error {
	return slf.Db.Save(run).Error
}

func (slf *RunRepository) FindByRunID(runID string) (models.ConversionRun, error) {
	var run models.ConversionRun
	err := slf.Db.Where("run_id = ?", runID).First(&run).Error
	return run, err
}

// Recent returns the latest runs, newest first
func (slf *RunRepository) Recent(limit int) ([]models.ConversionRun, error) {
	var runs []models.ConversionRun
	err := slf.Db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
