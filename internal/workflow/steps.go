package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/storewise/storewise/internal/gateway"
	"github.com/storewise/storewise/internal/sqlexec"
	"github.com/storewise/storewise/internal/viz"
)

func (e *Engine) stepGuardrail(ctx context.Context, state *RunState) error {
	catalog, err := e.Schema.Schema(ctx)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	content, err := e.Gateway.Complete(ctx, gateway.TaskGuardrail, guardrailPrompt(catalog.PromptContext(), state.Question))
	if err != nil {
		return err
	}

	verdict, err := gateway.ParseVerdict(content)
	if err != nil {
		// An unparseable verdict never blocks a legitimate question.
		if e.Logger != nil {
			e.Logger.WarnContext(ctx, "guardrail verdict unparseable, allowing question",
				slog.String("run_id", state.RunID), slog.Any("error", err))
		}
		state.Validity = ValidityValid
		return nil
	}

	if verdict.Greeting {
		state.Greeting = true
		state.AnswerText = e.Config.Greeting
		return nil
	}
	if verdict.Relevant {
		state.Validity = ValidityValid
		return nil
	}
	state.Validity = ValidityRejected
	state.RejectionReason = outOfScopeReason
	return nil
}

func (e *Engine) stepGenerate(ctx context.Context, state *RunState) error {
	catalog, err := e.Schema.Schema(ctx)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	schemaContext := catalog.PromptContext()

	content, err := e.Gateway.Complete(ctx, gateway.TaskGenerateSQL, generatePrompt(schemaContext, state.Question))
	if err != nil {
		return err
	}

	candidate, candidateErr := usableCandidate(content)
	if candidateErr != nil {
		// One corrective reprompt; a second unusable response fails the run.
		retry, err := e.Gateway.Complete(ctx, gateway.TaskGenerateSQL,
			regeneratePrompt(schemaContext, state.Question, content, candidateErr.Error()))
		if err != nil {
			return err
		}
		candidate, candidateErr = usableCandidate(retry)
		if candidateErr != nil {
			return fmt.Errorf("could not generate a valid read-only query: %w", candidateErr)
		}
	}

	state.recordCandidate(candidate)
	return nil
}

// usableCandidate extracts the statement and applies the read-only guard,
// so the generator is reprompted before anything reaches the executor.
func usableCandidate(content string) (string, error) {
	sqlText, err := gateway.ExtractSQL(content)
	if err != nil {
		return "", err
	}
	if err := sqlexec.EnsureReadOnly(sqlText); err != nil {
		return "", err
	}
	return sqlText, nil
}

func (e *Engine) stepExecute(ctx context.Context, state *RunState) error {
	state.Attempts++

	// Second defense: corrected candidates pass through here too.
	if err := sqlexec.EnsureReadOnly(state.SQLCandidate); err != nil {
		var execErr *sqlexec.Error
		if errors.As(err, &execErr) {
			state.Result = nil
			state.ExecError = execErr
			return nil
		}
		return err
	}

	table, err := e.Executor.Execute(ctx, state.SQLCandidate)
	if err != nil {
		var execErr *sqlexec.Error
		if errors.As(err, &execErr) {
			state.Result = nil
			state.ExecError = execErr
			return nil
		}
		return fmt.Errorf("execute query: %w", err)
	}

	state.Result = &table
	state.ExecError = nil
	return nil
}

func (e *Engine) stepCorrect(ctx context.Context, state *RunState) error {
	if state.ExecError == nil {
		return fmt.Errorf("corrector reached without an execution error")
	}
	catalog, err := e.Schema.Schema(ctx)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	content, err := e.Gateway.Complete(ctx, gateway.TaskCorrectSQL,
		correctPrompt(catalog.PromptContext(), state.Question, state.SQLCandidate, state.ExecError.Message))
	if err != nil {
		return err
	}

	corrected, err := gateway.ExtractSQL(content)
	if err != nil {
		state.CorrectionStalled = true
		return nil
	}
	if state.HasExecutedBefore(corrected) {
		// A repeated candidate would fail the same way; stop before
		// executing it again.
		state.CorrectionStalled = true
		return nil
	}

	state.recordCandidate(corrected)
	state.ExecError = nil
	return nil
}

func (e *Engine) stepAnalyze(ctx context.Context, state *RunState) error {
	if state.Result == nil {
		return fmt.Errorf("analyzer reached without a result")
	}

	resultText := renderResult(state.Result, e.Config.RowSampleCap)
	content, err := e.Gateway.Complete(ctx, gateway.TaskAnalyze,
		analyzePrompt(state.Question, state.SQLCandidate, resultText))
	if err != nil {
		return err
	}
	state.AnswerText = strings.TrimSpace(content)
	return nil
}

func (e *Engine) stepVizDecide(ctx context.Context, state *RunState) error {
	skip := func() {
		state.Viz = VizNotNeeded
		state.ChartType = viz.ChartNone
	}

	result := state.Result
	if result == nil || len(result.Rows) == 0 {
		skip()
		return nil
	}
	if len(result.Rows) == 1 && len(result.Columns) == 1 {
		// Scalar answers read fine as text; skip the gateway call.
		skip()
		return nil
	}

	content, err := e.Gateway.Complete(ctx, gateway.TaskVizDecide, vizDecidePrompt(state.Question, result))
	if err != nil {
		return err
	}
	choice, err := gateway.ParseVizChoice(content)
	if err != nil {
		if e.Logger != nil {
			e.Logger.WarnContext(ctx, "viz choice unparseable, skipping chart",
				slog.String("run_id", state.RunID), slog.Any("error", err))
		}
		skip()
		return nil
	}
	if !choice.Needed || len(result.Rows) < 2 || !hasNumeric(viz.ClassifyColumns(*result)) {
		skip()
		return nil
	}

	state.Viz = VizNeeded
	state.ChartType = choice.ChartType
	return nil
}

func (e *Engine) stepVisualize(ctx context.Context, state *RunState) error {
	spec, err := viz.Build(state.Question, state.ChartType, *state.Result)
	if err != nil {
		// A chart that cannot be built is dropped, not a run failure.
		if e.Logger != nil {
			e.Logger.WarnContext(ctx, "chart build failed, skipping chart",
				slog.String("run_id", state.RunID), slog.Any("error", err))
		}
		state.Viz = VizNotNeeded
		state.ChartType = viz.ChartNone
		state.Chart = nil
		return nil
	}
	state.Chart = spec
	return nil
}

func hasNumeric(kinds []viz.ColumnKind) bool {
	for _, kind := range kinds {
		if kind == viz.KindNumeric {
			return true
		}
	}
	return false
}
