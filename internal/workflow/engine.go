package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/storewise/storewise/internal/gateway"
	"github.com/storewise/storewise/internal/observability"
	"github.com/storewise/storewise/internal/schema"
	"github.com/storewise/storewise/internal/sqlexec"
)

type Config struct {
	// MaxRetries is the number of correction rounds after the first failed
	// execution, so a run executes at most MaxRetries+1 candidates.
	MaxRetries   int
	RowSampleCap int
	Greeting     string
}

const defaultGreetingAnswer = "Hello! How can I assist you with e-commerce data today?"

const outOfScopeReason = "I'm sorry, but your question is outside the scope of the e-commerce database I have access to. " +
	"Please ask something related to products, users, orders, inventory, or sales analytics."

// Engine drives one run at a time through the transition table. It holds no
// per-run state and is safe to share across concurrent requests.
type Engine struct {
	Gateway  gateway.Client
	Executor sqlexec.Executor
	Schema   schema.Provider
	Sink     Sink
	Config   Config
	Logger   *slog.Logger
	Clock    func() time.Time
}

type route struct {
	when func(*RunState) bool
	next Node
}

func always(*RunState) bool { return true }

// transitions is evaluated in order per node; the first matching predicate
// wins. Predicates are pure functions of run state.
var transitions = map[Node][]route{
	NodeGuardrail: {
		{when: func(s *RunState) bool { return s.Greeting }, next: NodeEnd},
		{when: func(s *RunState) bool { return s.Validity == ValidityRejected }, next: NodeEnd},
		{when: always, next: NodeGenerate},
	},
	NodeGenerate: {
		{when: always, next: NodeExecute},
	},
	NodeExecute: {
		{when: func(s *RunState) bool { return s.ExecError == nil }, next: NodeAnalyze},
		{when: func(s *RunState) bool { return s.Attempts <= s.maxRetries }, next: NodeCorrect},
		{when: always, next: NodeEnd},
	},
	NodeCorrect: {
		{when: func(s *RunState) bool { return s.CorrectionStalled }, next: NodeEnd},
		{when: always, next: NodeExecute},
	},
	NodeAnalyze: {
		{when: always, next: NodeVizDecide},
	},
	NodeVizDecide: {
		{when: func(s *RunState) bool { return s.Viz == VizNeeded }, next: NodeVisualize},
		{when: always, next: NodeEnd},
	},
	NodeVisualize: {
		{when: always, next: NodeEnd},
	},
}

// RunWithSink behaves like Run but delivers progress events to sink instead
// of the engine's own. The engine holds no per-run state, so a shallow copy
// with a swapped sink is safe; the HTTP API uses this to stream per request.
func (e *Engine) RunWithSink(ctx context.Context, question string, sink Sink) *RunState {
	streaming := *e
	streaming.Sink = sink
	return streaming.Run(ctx, question)
}

// Run drives a question to a terminal state. Every outcome is a state:
// gateway failures, cancellation, and exhausted budgets all land in
// Status/FailureReason rather than an error return. Defaults are resolved
// on a copy so concurrent runs never write to the shared engine.
func (e *Engine) Run(ctx context.Context, question string) *RunState {
	engine := *e
	engine.ensureDefaults()
	return engine.run(ctx, question)
}

func (e *Engine) run(ctx context.Context, question string) *RunState {
	state := &RunState{
		RunID:      newRunID(),
		Question:   question,
		StartedAt:  e.Clock(),
		Validity:   ValidityUnknown,
		Viz:        VizNotEvaluated,
		Status:     StatusRunning,
		maxRetries: e.Config.MaxRetries,
	}
	start := e.Clock()
	if e.Logger != nil {
		e.Logger.InfoContext(ctx, "run started", slog.String("run_id", state.RunID))
	}

	node := NodeGuardrail
	for node != NodeEnd {
		if ctx.Err() != nil {
			state.Status = StatusCancelled
			state.FailureReason = fmt.Sprintf("run cancelled before %s", node)
			break
		}

		nodeStart := e.Clock()
		err := e.step(ctx, node, state)
		observability.ObserveNode(string(node), e.Clock().Sub(nodeStart))
		if err != nil {
			if ctx.Err() != nil {
				state.Status = StatusCancelled
				state.FailureReason = fmt.Sprintf("run cancelled during %s", node)
			} else {
				state.Status = StatusFailed
				state.FailureReason = failureReason(err)
				if e.Logger != nil {
					e.Logger.ErrorContext(ctx, "run step failed",
						slog.String("run_id", state.RunID),
						slog.String("node", string(node)),
						slog.Any("error", err))
				}
			}
			e.emit(node, state)
			break
		}

		next := e.route(node, state)
		if next == NodeEnd {
			e.finalize(state)
		}
		e.emit(node, state)
		node = next
	}

	if state.Status == StatusRunning {
		state.Status = StatusCompleted
	}
	observability.ObserveRun(string(state.Status), state.Attempts, e.Clock().Sub(start))
	e.emit(NodeEnd, state)
	if e.Logger != nil {
		e.Logger.InfoContext(ctx, "run finished",
			slog.String("run_id", state.RunID),
			slog.String("status", string(state.Status)),
			slog.Int("attempts", state.Attempts))
	}
	return state
}

func (e *Engine) step(ctx context.Context, node Node, state *RunState) error {
	switch node {
	case NodeGuardrail:
		return e.stepGuardrail(ctx, state)
	case NodeGenerate:
		return e.stepGenerate(ctx, state)
	case NodeExecute:
		return e.stepExecute(ctx, state)
	case NodeCorrect:
		return e.stepCorrect(ctx, state)
	case NodeAnalyze:
		return e.stepAnalyze(ctx, state)
	case NodeVizDecide:
		return e.stepVizDecide(ctx, state)
	case NodeVisualize:
		return e.stepVisualize(ctx, state)
	default:
		return fmt.Errorf("unknown workflow node %q", node)
	}
}

func (e *Engine) route(node Node, state *RunState) Node {
	for _, candidate := range transitions[node] {
		if candidate.when(state) {
			return candidate.next
		}
	}
	return NodeEnd
}

// finalize derives the terminal status once routing reaches end. It runs
// exactly once per run; fatal step errors set the status before it.
func (e *Engine) finalize(state *RunState) {
	if state.Terminal() {
		return
	}
	switch {
	case state.Greeting:
		state.Status = StatusCompleted
	case state.Validity == ValidityRejected:
		state.Status = StatusRejected
	case state.CorrectionStalled, state.ExecError != nil:
		state.Status = StatusFailed
		state.FailureReason = exhaustedReason(state)
	default:
		state.Status = StatusCompleted
	}
}

func exhaustedReason(state *RunState) string {
	reason := fmt.Sprintf("could not produce a working query after %d attempts", state.Attempts)
	if state.CorrectionStalled {
		reason += " (the corrected query repeated an earlier attempt)"
	}
	if state.ExecError != nil {
		reason += ": " + state.ExecError.Message
	}
	return reason
}

func failureReason(err error) string {
	var gatewayErr *gateway.Error
	if errors.As(err, &gatewayErr) {
		return "the language model service is unavailable"
	}
	return err.Error()
}

func (e *Engine) emit(node Node, state *RunState) {
	if e.Sink == nil {
		return
	}
	e.Sink.Emit(Event{Node: node, At: e.Clock(), State: state.Snapshot()})
}

func (e *Engine) ensureDefaults() {
	if e.Clock == nil {
		e.Clock = time.Now
	}
	if e.Config.RowSampleCap <= 0 {
		e.Config.RowSampleCap = 20
	}
	if e.Config.Greeting == "" {
		e.Config.Greeting = defaultGreetingAnswer
	}
}
