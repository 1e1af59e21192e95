package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sv2linux/sv2-bridge/pkg/common/logger"
)

// authStatus reports the listener session and the most recent relay outcome.
// SV2 setup scripts poll this to confirm the bridge is alive.
func (h *Handler) authStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"port":       h.port,
		"started_at": h.startedAt.Format(time.RFC3339),
	}

	hasCode := false
	if h.repo != nil {
		if err := h.repo.Health(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "unhealthy", "error": err.Error()})
			return
		}
		count, err := h.repo.Count(r.Context())
		if err != nil {
			logger.Warn("status: counting invocations: %v", err)
		}
		resp["invocations_handled"] = count
		last, err := h.repo.Latest(r.Context())
		if err != nil {
			logger.Warn("status: loading latest invocation: %v", err)
		}
		if last != nil {
			hasCode = last.Outcome == "success"
			resp["last_outcome"] = last.Outcome
			resp["last_origin"] = last.Origin
			resp["last_at"] = last.CreatedAt.Format(time.RFC3339)
		}
	}
	resp["has_auth_code"] = hasCode

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
