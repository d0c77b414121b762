// Package workflow is the orchestration core: a finite-state machine that
// routes a question through validation, SQL generation, execution, bounded
// correction, analysis, and visualization. One RunState per run, owned by
// the engine; collaborators stay behind the gateway, executor, schema, and
// sink interfaces.
package workflow

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/storewise/storewise/internal/sqlexec"
	"github.com/storewise/storewise/internal/viz"
)

type Validity string

const (
	ValidityUnknown  Validity = "unknown"
	ValidityValid    Validity = "valid"
	ValidityRejected Validity = "rejected"
)

type VizDecision string

const (
	VizNotEvaluated VizDecision = "not_evaluated"
	VizNotNeeded    VizDecision = "not_needed"
	VizNeeded       VizDecision = "needed"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

type Node string

const (
	NodeGuardrail Node = "guardrail"
	NodeGenerate  Node = "generate"
	NodeExecute   Node = "execute"
	NodeCorrect   Node = "correct"
	NodeAnalyze   Node = "analyze"
	NodeVizDecide Node = "viz_decide"
	NodeVisualize Node = "visualize"
	NodeEnd       Node = "end"
)

// RunState is the single mutable record of a run. Steps write into it,
// routing predicates read from it, and the terminal state is the API
// response. maxRetries is frozen at run start so the predicates stay pure
// functions of state.
type RunState struct {
	RunID     string    `json:"run_id"`
	Question  string    `json:"question"`
	StartedAt time.Time `json:"started_at"`

	Validity        Validity `json:"validity"`
	Greeting        bool     `json:"greeting,omitempty"`
	RejectionReason string   `json:"rejection_reason,omitempty"`

	SQLCandidate string   `json:"sql,omitempty"`
	SQLHistory   []string `json:"sql_history,omitempty"`

	Result    *sqlexec.Table `json:"result,omitempty"`
	ExecError *sqlexec.Error `json:"exec_error,omitempty"`

	Attempts          int  `json:"attempts"`
	CorrectionStalled bool `json:"correction_stalled,omitempty"`

	AnswerText string `json:"answer,omitempty"`

	Viz       VizDecision `json:"viz_decision"`
	ChartType viz.Chart   `json:"chart_type,omitempty"`
	Chart     *viz.Spec   `json:"chart,omitempty"`

	Status        Status `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`

	maxRetries int
}

func (s *RunState) Terminal() bool {
	return s.Status != StatusRunning
}

// HasExecutedBefore reports whether a candidate matches any executed query
// under normalization, so formatting-only corrections count as repeats.
func (s *RunState) HasExecutedBefore(sqlText string) bool {
	normalized := sqlexec.Normalize(sqlText)
	for _, previous := range s.SQLHistory {
		if sqlexec.Normalize(previous) == normalized {
			return true
		}
	}
	return false
}

func (s *RunState) recordCandidate(sqlText string) {
	s.SQLCandidate = sqlText
	s.SQLHistory = append(s.SQLHistory, sqlText)
}

// Snapshot is the redacted view of a RunState carried on progress events:
// no prompts and no result rows, only shape and status.
type Snapshot struct {
	RunID     string         `json:"run_id"`
	Status    Status         `json:"status"`
	Validity  Validity       `json:"validity"`
	Greeting  bool           `json:"greeting,omitempty"`
	SQL       string         `json:"sql,omitempty"`
	Attempts  int            `json:"attempts"`
	RowCount  int            `json:"row_count,omitempty"`
	Truncated bool           `json:"truncated,omitempty"`
	ExecError *sqlexec.Error `json:"exec_error,omitempty"`
	Answer    string         `json:"answer,omitempty"`
	Viz       VizDecision    `json:"viz_decision"`
	ChartType viz.Chart      `json:"chart_type,omitempty"`
}

func (s *RunState) Snapshot() Snapshot {
	snapshot := Snapshot{
		RunID:     s.RunID,
		Status:    s.Status,
		Validity:  s.Validity,
		Greeting:  s.Greeting,
		SQL:       s.SQLCandidate,
		Attempts:  s.Attempts,
		Answer:    s.AnswerText,
		Viz:       s.Viz,
		ChartType: s.ChartType,
	}
	if s.Result != nil {
		snapshot.RowCount = len(s.Result.Rows)
		snapshot.Truncated = s.Result.Truncated
	}
	if s.ExecError != nil {
		execErr := *s.ExecError
		snapshot.ExecError = &execErr
	}
	return snapshot
}

func newRunID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}
