package auth

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/sv2linux/sv2-bridge/pkg/common/logger"
)

// authStart builds the Keycloak authorization URL and opens it in the
// system browser. The redirect URI is the custom scheme, so the callback
// comes back through the OS dispatcher (or this listener, when the desktop
// entry forwards here).
func (h *Handler) authStart(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", h.responseType)
	params.Set("state", state)
	params.Set("scope", oauthScope)
	authURL := authEndpoint + "?" + params.Encode()

	logger.Info("starting authentication, opening %s", authEndpoint)
	logger.Debug("authorization URL state=%s response_type=%s", state, h.responseType)

	if err := h.openBrowser(authURL); err != nil {
		logger.Error("failed to open browser: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "error",
			"message": "Failed to open browser: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "success",
		"message":  "Authentication started in system browser",
		"auth_url": authURL,
		"state":    state,
	})
}
