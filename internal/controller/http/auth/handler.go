package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sv2linux/sv2-bridge/internal/bridge"
	"github.com/sv2linux/sv2-bridge/pkg/common/browser"
	irepo "github.com/sv2linux/sv2-bridge/pkg/repositories/invocations"
)

// Dreamtonics account endpoint the SV2 desktop client authenticates
// against. The bridge only builds the authorization URL; the browser and
// Keycloak run the actual flow.
const (
	authEndpoint = "https://account.dreamtonics.com/realms/Dreamtonics/protocol/openid-connect/auth"
	clientID     = "svstudio2"
	redirectURI  = "dreamtonics-svstudio2://auth/callback"
	oauthScope   = "openid profile email"
)

type Handler struct {
	svc          *bridge.Service
	repo         irepo.Repository
	port         int
	startedAt    time.Time
	responseType string
	openBrowser  func(url string) error
}

// NewHandler constructs a Handler around the shared relay pipeline. The
// repository feeds /auth/status; responseType is forwarded to the
// authorization URL (code unless overridden for providers that only do
// fragment delivery).
func NewHandler(svc *bridge.Service, repo irepo.Repository, port int, responseType string) *Handler {
	if responseType == "" {
		responseType = "code"
	}
	return &Handler{
		svc:          svc,
		repo:         repo,
		port:         port,
		startedAt:    time.Now(),
		responseType: responseType,
		openBrowser:  browser.Open,
	}
}

// Router returns the chi router for the bridge endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.index)
	r.Get("/auth/start", h.authStart)
	r.Get("/auth/callback", h.authCallback)
	// Some browsers strip the path down to the redirect URI's root; accept
	// the bare form too.
	r.Get("/callback", h.authCallback)
	r.Get("/auth/status", h.authStatus)
	return r
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>SV2 Authentication Bridge</title><meta charset="utf-8"></head>
<body>
    <h1>SV2 Authentication Bridge</h1>
    <p>This service relays OAuth logins to Synthesizer V Studio 2 running under Wine.</p>
    <p><a href="/auth/start">Start authentication</a> &middot; <a href="/auth/status">Status</a></p>
</body>
</html>
`
