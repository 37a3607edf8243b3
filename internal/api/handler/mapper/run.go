package mapper

import (
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/response"
	"github.com/manarouei/agent-skills-sub004/internal/api/models"
	"github.com/manarouei/agent-skills-sub004/internal/batch"
)

type RunMapper struct{}

func NewRunMapper() RunMapper {
	return RunMapper{}
}

// ReportToEntity copies the outcome of a finished run onto its entity
func (RunMapper) ReportToEntity(report *batch.Report, run *models.ConversionRun) {
	run.Converted = report.Converted
	run.Failed = report.Failed
	finished := report.Finished
	run.FinishedAt = &finished
	run.Status = models.RunCompleted
	if report.Converted == 0 && report.Failed > 0 {
		run.Status = models.RunFailed
	}
}

// EntityToRunResponse builds the API view of a run; report may be nil while
// the run is in progress.
func (RunMapper) EntityToRunResponse(run models.ConversionRun, report *batch.Report) response.RunResponseDTO {
	dto := response.RunResponseDTO{
		RunID:      run.RunID,
		Status:     string(run.Status),
		Root:       run.Root,
		OutputDir:  run.OutputDir,
		Converted:  run.Converted,
		Failed:     run.Failed,
		Error:      run.Error,
		StartedBy:  run.StartedBy,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Subject:    batch.ProgressSubject(run.RunID),
	}
	if report == nil {
		return dto
	}
	dto.Nodes = make([]response.NodeResultDTO, 0, len(report.Nodes))
	for _, n := range report.Nodes {
		dto.Nodes = append(dto.Nodes, response.NodeResultDTO{
			File:           n.File,
			NodeName:       n.NodeName,
			Class:          n.Class,
			Specialization: n.Specialization,
			Output:         n.Output,
			Notes:          n.Notes,
			Error:          n.Error,
		})
	}
	return dto
}
