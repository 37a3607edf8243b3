package batch

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Status is the conversion status of one descriptor
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Progress is a progress update for one descriptor
type Progress struct {
	RunID    string `json:"runId"`
	File     string `json:"file"`
	NodeName string `json:"nodeName,omitempty"`
	Status   Status `json:"status"`
	Output   string `json:"output,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ProgressFunc receives progress updates. It is called from pool workers and
// must be safe for concurrent use.
type ProgressFunc func(Progress)

// ProgressReporter publishes progress updates to NATS
type ProgressReporter struct {
	conn    *nats.Conn
	subject string
	noop    bool
	logger  zerolog.Logger
}

// ProgressSubject is the subject updates of a run are published on
func ProgressSubject(runID string) string {
	return fmt.Sprintf("codeconvert.run.%s.progress", runID)
}

// NewProgressReporter connects to NATS. Reporting is best effort: without a
// URL, or when the connection fails, a reporter that only logs is returned.
func NewProgressReporter(natsURL, runID string, logger zerolog.Logger) *ProgressReporter {
	subject := ProgressSubject(runID)
	if natsURL == "" {
		return &ProgressReporter{noop: true, subject: subject, logger: logger}
	}

	nc, err := nats.Connect(natsURL, nats.Name("codeconvert"))
	if err != nil {
		logger.Warn().Err(err).Str("url", natsURL).Msg("NATS connection failed, progress reporting disabled")
		return &ProgressReporter{noop: true, subject: subject, logger: logger}
	}

	logger.Info().Str("subject", subject).Msg("NATS connected, publishing progress")
	return &ProgressReporter{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}
}

// Close drains and closes the NATS connection
func (r *ProgressReporter) Close() {
	if r.noop || r.conn == nil {
		return
	}
	if err := r.conn.Drain(); err != nil {
		r.logger.Warn().Err(err).Msg("NATS drain error")
	}
}

// Enabled reports whether updates are published
func (r *ProgressReporter) Enabled() bool {
	return !r.noop
}

// ReportFunc returns a ProgressFunc publishing to NATS
func (r *ProgressReporter) ReportFunc() ProgressFunc {
	if r.noop {
		return func(p Progress) {
			r.logger.Debug().Str("file", p.File).Str("status", string(p.Status)).Msg("progress (no-op)")
		}
	}

	return func(p Progress) {
		data, err := json.Marshal(p)
		if err != nil {
			r.logger.Error().Err(err).Msg("progress marshal error")
			return
		}
		if err := r.conn.Publish(r.subject, data); err != nil {
			r.logger.Error().Err(err).Msg("progress publish error")
		}
	}
}
