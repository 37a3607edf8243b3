package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
	"github.com/manarouei/agent-skills-sub004/internal/gen"
)

// ReportFile is written to the output directory after every run
const ReportFile = "codeconvert-report.json"

// Config drives one batch conversion
type Config struct {
	Root      string
	Pattern   string
	OutputDir string
	Package   string
	Workers   int
	Overrides *gen.Overrides
	Progress  ProgressFunc
	Logger    zerolog.Logger
}

// NodeReport is the outcome of converting one descriptor
type NodeReport struct {
	File           string   `json:"file"`
	NodeName       string   `json:"node_name,omitempty"`
	Class          string   `json:"class,omitempty"`
	Specialization string   `json:"specialization,omitempty"`
	Output         string   `json:"output,omitempty"`
	Fingerprint    string   `json:"fingerprint,omitempty"`
	Notes          []string `json:"notes,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Failed reports whether the descriptor could not be converted
func (r NodeReport) Failed() bool {
	return r.Error != ""
}

// Report summarises a run
type Report struct {
	RunID     string       `json:"run_id"`
	Started   time.Time    `json:"started"`
	Finished  time.Time    `json:"finished"`
	Converted int          `json:"converted"`
	Failed    int          `json:"failed"`
	Nodes     []NodeReport `json:"nodes"`
}

// Converter converts every descriptor matched by its configuration. A failing
// descriptor is reported and never stops the run.
type Converter struct {
	cfg Config
}

// conversion is an assembled adapter waiting to be written
type conversion struct {
	report NodeReport
	name   string
	src    []byte
}

func NewConverter(cfg Config) *Converter {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Package == "" {
		cfg.Package = gen.DefaultPackage
	}
	if cfg.Progress == nil {
		cfg.Progress = func(Progress) {}
	}
	return &Converter{cfg: cfg}
}

// NewRunID returns a sortable identifier for a run
func NewRunID() string {
	return ulid.Make().String()
}

// Run converts all matching descriptors under a new run id
func (c *Converter) Run(ctx context.Context) (*Report, error) {
	return c.RunWithID(ctx, NewRunID())
}

// RunWithID is Run with a caller supplied run id
func (c *Converter) RunWithID(ctx context.Context, runID string) (*Report, error) {
	report := &Report{RunID: runID, Started: time.Now().UTC()}
	log := c.cfg.Logger.With().Str("run", runID).Logger()

	files, err := Discover(c.cfg.Root, c.cfg.Pattern)
	if err != nil {
		return nil, err
	}
	files = c.excludeOutput(files)
	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	log.Info().Int("files", len(files)).Int("workers", c.cfg.Workers).Msg("starting conversion")

	pool, err := ants.NewPool(c.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	// each task writes only its own slot
	converted := make([]conversion, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		idx, rel := i, file
		err := pool.Submit(func() {
			defer wg.Done()
			converted[idx] = c.convert(ctx, runID, rel)
		})
		if err != nil {
			wg.Done()
			converted[idx] = conversion{report: NodeReport{File: rel, Error: fmt.Sprintf("failed to submit conversion: %v", err)}}
		}
	}
	wg.Wait()

	// files are sorted, so on a name collision the first descriptor wins
	// whatever order the workers finished in
	results := make([]NodeReport, len(converted))
	claimed := make(map[string]string, len(converted))
	for i, conv := range converted {
		results[i] = c.write(runID, conv, claimed)
	}

	for _, r := range results {
		if r.Failed() {
			report.Failed++
			log.Warn().Str("file", r.File).Msg(r.Error)
		} else {
			report.Converted++
		}
	}
	report.Nodes = results
	report.Finished = time.Now().UTC()

	if err := WriteReport(filepath.Join(c.cfg.OutputDir, ReportFile), report); err != nil {
		return report, err
	}
	log.Info().
		Int("converted", report.Converted).
		Int("failed", report.Failed).
		Dur("took", report.Finished.Sub(report.Started)).
		Msg("conversion finished")
	return report, nil
}

func (c *Converter) failed(runID string, nr NodeReport, err error) NodeReport {
	nr.Error = err.Error()
	c.cfg.Progress(Progress{RunID: runID, File: nr.File, NodeName: nr.NodeName, Status: StatusFailed, Message: nr.Error})
	return nr
}

// convert loads, routes and assembles one descriptor
func (c *Converter) convert(ctx context.Context, runID, rel string) conversion {
	nr := NodeReport{File: rel}
	if err := ctx.Err(); err != nil {
		return conversion{report: c.failed(runID, nr, fmt.Errorf("cancelled: %w", err))}
	}
	c.cfg.Progress(Progress{RunID: runID, File: rel, Status: StatusRunning})

	desc, err := LoadDescriptor(c.cfg.Root, rel)
	if err != nil {
		return conversion{report: c.failed(runID, nr, err)}
	}
	nr.NodeName = desc.NodeName

	res := gen.RouteWithOverrides(c.cfg.Overrides, gen.ParseSemanticClass(desc.SemanticClass), desc.Context())
	nr.Class = res.Class.String()
	nr.Specialization = res.Specialization()
	nr.Fingerprint = res.Fingerprint
	nr.Notes = res.ConversionNotes

	src, err := gen.AdapterFile(c.cfg.Package, res)
	if err != nil {
		return conversion{report: c.failed(runID, nr, fmt.Errorf("failed to assemble adapter: %w", err))}
	}
	return conversion{report: nr, name: gen.AdapterFileName(res), src: src}
}

// write stores an assembled adapter unless an earlier descriptor claimed its file name
func (c *Converter) write(runID string, conv conversion, claimed map[string]string) NodeReport {
	nr := conv.report
	if nr.Failed() {
		return nr
	}
	if prev, ok := claimed[conv.name]; ok {
		return c.failed(runID, nr, fmt.Errorf("%s is already produced by %s", conv.name, prev))
	}
	claimed[conv.name] = nr.File

	out := filepath.Join(c.cfg.OutputDir, conv.name)
	if err := os.WriteFile(out, conv.src, 0o644); err != nil {
		return c.failed(runID, nr, fmt.Errorf("failed to write adapter: %w", err))
	}
	nr.Output = out
	c.cfg.Progress(Progress{RunID: runID, File: nr.File, NodeName: nr.NodeName, Status: StatusCompleted, Output: out})
	return nr
}

// excludeOutput drops files inside the output directory so reports and
// generated files are never read back as descriptors.
func (c *Converter) excludeOutput(files []string) []string {
	outAbs, err := filepath.Abs(c.cfg.OutputDir)
	if err != nil {
		return files
	}
	kept := files[:0]
	for _, f := range files {
		abs, err := filepath.Abs(filepath.Join(c.cfg.Root, filepath.FromSlash(f)))
		if err == nil && strings.HasPrefix(abs, outAbs+string(filepath.Separator)) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// LoadDescriptor reads a descriptor below root. A ts_file reference is
// resolved relative to the descriptor when ts_code is empty.
func LoadDescriptor(root, rel string) (*contract.Descriptor, error) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	desc, err := contract.ParseDescriptor(rel, data)
	if err != nil {
		return nil, err
	}
	if desc.TSCode == "" && desc.TSFile != "" {
		ts, err := os.ReadFile(filepath.Join(filepath.Dir(path), filepath.FromSlash(desc.TSFile)))
		if err != nil {
			return nil, fmt.Errorf("failed to read ts_file: %w", err)
		}
		desc.TSCode = string(ts)
	}
	return desc, nil
}

// WriteReport stores the report as indented JSON
func WriteReport(path string, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}
