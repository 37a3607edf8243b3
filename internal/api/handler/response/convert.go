package response

import (
	"time"

	"github.com/manarouei/agent-skills-sub004/internal/gen"
)

type ConvertResponseDTO struct {
	Result *gen.Result `json:"result"`
	Cached bool        `json:"cached"`
}

type ClassResponseDTO struct {
	Name            string   `json:"name"`
	Specializations []string `json:"specializations"`
}

type RunResponseDTO struct {
	RunID      string          `json:"runId"`
	Status     string          `json:"status"`
	Root       string          `json:"root"`
	OutputDir  string          `json:"outputDir"`
	Converted  int             `json:"converted"`
	Failed     int             `json:"failed"`
	Error      string          `json:"error,omitempty"`
	StartedBy  string          `json:"startedBy,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
	Nodes      []NodeResultDTO `json:"nodes,omitempty"`
	Subject    string          `json:"progressSubject"`
}

type NodeResultDTO struct {
	File           string   `json:"file"`
	NodeName       string   `json:"nodeName,omitempty"`
	Class          string   `json:"class,omitempty"`
	Specialization string   `json:"specialization,omitempty"`
	Output         string   `json:"output,omitempty"`
	Notes          []string `json:"notes,omitempty"`
	Error          string   `json:"error,omitempty"`
}
