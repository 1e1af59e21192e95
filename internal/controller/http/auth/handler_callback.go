package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sv2linux/sv2-bridge/internal/bridge"
	"github.com/sv2linux/sv2-bridge/internal/delivery"
	"github.com/sv2linux/sv2-bridge/pkg/callback"
	"github.com/sv2linux/sv2-bridge/pkg/common/logger"
)

// authCallback is the core relay endpoint: Receiver → Extractor → Writer,
// synchronously, then a human-readable page so the browser tab shows the
// outcome. A failed request never takes the listener down.
func (h *Handler) authCallback(w http.ResponseWriter, r *http.Request) {
	inv := callback.FromRequest(r)
	art, err := h.svc.Process(r.Context(), inv)
	if err != nil {
		writeCallbackError(w, err)
		return
	}

	logger.Debug("callback relayed, code=%s", callback.SanitizeCode(art.Code))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(successPage))
}

func writeCallbackError(w http.ResponseWriter, err error) {
	var denial *callback.ProviderDenialError
	var write *delivery.Error

	status := http.StatusBadRequest
	title := "Invalid Callback"
	detail := "The callback request did not carry a usable authorization code."
	switch {
	case errors.As(err, &denial):
		status = http.StatusForbidden
		title = "Authorization Denied"
		detail = "The identity provider refused the authorization (" + denial.Code + "). Nothing was forwarded to SV2."
	case errors.As(err, &write):
		status = http.StatusInternalServerError
		title = "Failed to Forward to SV2"
		detail = "Could not write authentication data. Make sure SV2 is installed and try again."
	case errors.Is(err, callback.ErrMissingAuthorizationCode):
		detail = "The callback contained no authorization code. Retry the login from SV2."
	case errors.Is(err, callback.ErrMalformedCallbackURI), errors.Is(err, callback.ErrInvalidInvocation):
		detail = "The callback could not be parsed."
	default:
		status = http.StatusInternalServerError
		title = "Bridge Error"
		detail = "An unexpected error occurred; see the bridge log."
	}

	logger.Warn("callback failed (%s, HTTP %d): %v", bridge.OutcomeKind(err), status, err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, errorPageFmt, title, title, detail)
}

const successPage = `<!DOCTYPE html>
<html>
<head><title>Authentication Successful</title></head>
<body>
    <h1>Authentication Successful!</h1>
    <p>The login has been forwarded to Synthesizer V Studio 2.</p>
    <p>You can now close this window and return to SV2.</p>
    <script>setTimeout(function() { window.close(); }, 2000);</script>
</body>
</html>
`

const errorPageFmt = `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
    <h1>%s</h1>
    <p>%s</p>
</body>
</html>
`
