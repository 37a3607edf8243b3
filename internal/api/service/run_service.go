package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/mapper"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/request"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/response"
	"github.com/manarouei/agent-skills-sub004/internal/api/models"
	"github.com/manarouei/agent-skills-sub004/internal/api/repo"
	"github.com/manarouei/agent-skills-sub004/internal/batch"
	"github.com/manarouei/agent-skills-sub004/internal/gen"
)

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrInvalidRunPath = errors.New("run path is not a directory below the input directory")
)

type runState struct {
	run    models.ConversionRun
	report *batch.Report
	done   chan struct{}
}

// RunService starts batch conversions in the background. Runs are kept in
// memory and, when a database is configured, in the conversion_runs table.
type RunService struct {
	ctx       context.Context
	runRepo   *repo.RunRepository
	runMapper mapper.RunMapper
	overrides *gen.Overrides
	config    skills.AppConfig
	logger    zerolog.Logger

	mu   sync.Mutex
	runs map[string]*runState
	wg   sync.WaitGroup
}

// NewRunService creates the service; ctx bounds every run it starts
func NewRunService(ctx context.Context, overrides *gen.Overrides) *RunService {
	var runRepo *repo.RunRepository
	if skills.DB != nil {
		runRepo = repo.NewRunRepository()
	}
	return &RunService{
		ctx:       ctx,
		runRepo:   runRepo,
		runMapper: mapper.NewRunMapper(),
		overrides: overrides,
		config:    skills.GetConfig(),
		logger:    skills.Logger,
		runs:      make(map[string]*runState),
	}
}

// Start validates the request and launches the run
func (slf *RunService) Start(dto request.RunDTO, user string) (response.RunResponseDTO, error) {
	root := filepath.Join(slf.config.InputDir, filepath.Clean("/"+dto.Path))
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return response.RunResponseDTO{}, fmt.Errorf("%w: %s", ErrInvalidRunPath, dto.Path)
	}

	runID := batch.NewRunID()
	run := models.ConversionRun{
		RunID:     runID,
		Root:      root,
		Pattern:   dto.Pattern,
		OutputDir: filepath.Join(slf.config.OutputDir, runID),
		Status:    models.RunRunning,
		StartedBy: user,
		StartedAt: time.Now().UTC(),
	}
	if slf.runRepo != nil {
		if err := slf.runRepo.Create(&run); err != nil {
			slf.logger.Error().Err(err).Str("runId", runID).Msg("Error storing run")
			return response.RunResponseDTO{}, err
		}
	}

	state := &runState{run: run, done: make(chan struct{})}
	slf.mu.Lock()
	slf.runs[runID] = state
	slf.mu.Unlock()

	slf.wg.Add(1)
	go slf.execute(state, dto)

	slf.logger.Info().Str("runId", runID).Str("root", root).Str("user", user).Msg("run started")
	return slf.runMapper.EntityToRunResponse(run, nil), nil
}

func (slf *RunService) execute(state *runState, dto request.RunDTO) {
	defer slf.wg.Done()
	defer close(state.done)

	runID := state.run.RunID
	reporter := batch.NewProgressReporter(slf.config.NatsURL, runID, slf.logger)
	defer reporter.Close()

	converter := batch.NewConverter(batch.Config{
		Root:      state.run.Root,
		Pattern:   dto.Pattern,
		OutputDir: state.run.OutputDir,
		Package:   dto.Package,
		Workers:   dto.Workers,
		Overrides: slf.overrides,
		Progress:  reporter.ReportFunc(),
		Logger:    slf.logger,
	})
	report, err := converter.RunWithID(slf.ctx, runID)

	slf.mu.Lock()
	if report != nil {
		slf.runMapper.ReportToEntity(report, &state.run)
		state.report = report
	}
	if err != nil {
		now := time.Now().UTC()
		state.run.Status = models.RunFailed
		state.run.Error = err.Error()
		state.run.FinishedAt = &now
		slf.logger.Error().Err(err).Str("runId", runID).Msg("run failed")
	}
	run := state.run
	slf.mu.Unlock()

	if slf.runRepo != nil {
		if err := slf.runRepo.Update(&run); err != nil {
			slf.logger.Error().Err(err).Str("runId", runID).Msg("Error updating run")
		}
	}
}

// Get returns a run started by this process or, failing that, a stored one
func (slf *RunService) Get(runID string) (response.RunResponseDTO, error) {
	slf.mu.Lock()
	state, ok := slf.runs[runID]
	var run models.ConversionRun
	var report *batch.Report
	if ok {
		run, report = state.run, state.report
	}
	slf.mu.Unlock()
	if ok {
		return slf.runMapper.EntityToRunResponse(run, report), nil
	}

	if slf.runRepo == nil {
		return response.RunResponseDTO{}, ErrRunNotFound
	}
	run, err := slf.runRepo.FindByRunID(runID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.RunResponseDTO{}, ErrRunNotFound
	}
	if err != nil {
		slf.logger.Error().Err(err).Str("runId", runID).Msg("Error finding run")
		return response.RunResponseDTO{}, err
	}
	report, err = batch.ReadReport(filepath.Join(run.OutputDir, batch.ReportFile))
	if err != nil {
		report = nil
	}
	return slf.runMapper.EntityToRunResponse(run, report), nil
}

// Wait blocks until the run finished or ctx is done
func (slf *RunService) Wait(ctx context.Context, runID string) error {
	slf.mu.Lock()
	state, ok := slf.runs[runID]
	slf.mu.Unlock()
	if !ok {
		return ErrRunNotFound
	}
	select {
	case <-state.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for the runs still in progress
func (slf *RunService) Close() {
	slf.wg.Wait()
}
