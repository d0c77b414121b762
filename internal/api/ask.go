package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storewise/storewise/internal/auth"
	"github.com/storewise/storewise/internal/observability"
	"github.com/storewise/storewise/internal/workflow"
)

type askRequest struct {
	Question string `json:"question"`
	Stream   bool   `json:"stream"`
	Export   bool   `json:"export"`
}

// askResponse is the terminal run state plus the export outcome when the
// caller asked for one. A failed export does not fail the ask.
type askResponse struct {
	*workflow.RunState
	Export      *exportInfo `json:"export,omitempty"`
	ExportError string      `json:"export_error,omitempty"`
}

type exportInfo struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Engine == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "ask dependencies are not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleAsk); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	request.Question = strings.TrimSpace(request.Question)
	if request.Question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}
	if request.Export && deps.Exporter == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXPORT_NOT_CONFIGURED", "result export is not configured", false, nil)
		return
	}

	if request.Stream {
		streamAsk(deps, w, r, request)
		return
	}

	state := deps.Engine.Run(r.Context(), request.Question)
	writeJSON(w, http.StatusOK, buildAskResponse(deps, r, request, state))
}

// streamAsk replays workflow progress as SSE. Events go out in node order
// as the run produces them, then a final result event carries the same
// payload the non-streaming path returns.
func streamAsk(deps Dependencies, w http.ResponseWriter, r *http.Request, request askRequest) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	controller := http.NewResponseController(w)
	sink := workflow.SinkFunc(func(event workflow.Event) {
		writeSSE(w, "progress", event)
		_ = controller.Flush()
	})

	state := deps.Engine.RunWithSink(r.Context(), request.Question, sink)
	writeSSE(w, "result", buildAskResponse(deps, r, request, state))
	_ = controller.Flush()
}

func buildAskResponse(deps Dependencies, r *http.Request, request askRequest, state *workflow.RunState) askResponse {
	response := askResponse{RunState: state}
	if !request.Export {
		return response
	}
	if state.Status != workflow.StatusCompleted || state.Result == nil || state.Result.IsEmpty() {
		response.ExportError = "run produced no result table to export"
		return response
	}

	info, err := deps.Exporter.Export(r.Context(), state.RunID, *state.Result)
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "result export failed",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.String("run_id", state.RunID),
				slog.Any("error", err))
		}
		response.ExportError = err.Error()
		return response
	}
	response.Export = &exportInfo{Key: info.Key, SizeBytes: info.Size}
	return response
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, body)
}
