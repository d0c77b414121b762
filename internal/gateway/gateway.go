// Package gateway is the single seam between the ask workflow and the model
// provider. Nodes describe what they need as a task plus a prompt; the
// gateway owns transport, caching, and response extraction.
package gateway

import (
	"context"
	"fmt"
)

// Task identifies which workflow step a completion serves. Caching and
// metrics key off it.
type Task string

const (
	TaskGuardrail   Task = "guardrail"
	TaskGenerateSQL Task = "sql_generate"
	TaskCorrectSQL  Task = "sql_correct"
	TaskAnalyze     Task = "analyze"
	TaskVizDecide   Task = "viz_decide"
)

type Prompt struct {
	System string
	User   string
}

type Client interface {
	Complete(ctx context.Context, task Task, prompt Prompt) (string, error)
}

// Error is any gateway failure: transport, provider status, or an
// unusable response body. The workflow treats these as fatal for the run,
// unlike SQL execution errors which feed the correction loop.
type Error struct {
	Task   Task
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gateway task %s failed status=%d: %v", e.Task, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway task %s failed: %v", e.Task, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
