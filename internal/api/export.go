package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/storewise/storewise/internal/auth"
	"github.com/storewise/storewise/internal/sqlexec"
)

type exportRequest struct {
	RunID  string         `json:"run_id"`
	Result *sqlexec.Table `json:"result"`
}

type exportResponse struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
}

// handleExport writes an inline result table to the object store as a
// parquet artifact. The service keeps no run history, so the caller sends
// back the result it received from /v1/ask.
func handleExport(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Exporter == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXPORT_NOT_CONFIGURED", "result export is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleExport); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request exportRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid export request body", false, map[string]any{"details": err.Error()})
		return
	}
	request.RunID = strings.TrimSpace(request.RunID)
	if request.RunID == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "RUN_ID_REQUIRED", "run_id is required", false, nil)
		return
	}
	if request.Result == nil || request.Result.IsEmpty() {
		writeError(r.Context(), w, http.StatusBadRequest, "RESULT_REQUIRED", "result table with at least one row is required", false, nil)
		return
	}

	info, err := deps.Exporter.Export(r.Context(), request.RunID, *request.Result)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "EXPORT_FAILED", "result export failed", false, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Key: info.Key, SizeBytes: info.Size})
}
