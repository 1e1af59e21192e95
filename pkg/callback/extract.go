package callback

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Artifact is the canonical record extracted from a callback, handed to the
// delivery writer and discarded after a successful write.
type Artifact struct {
	Code         string
	State        string
	SessionState string
	Issuer       string
	// Subject is pulled from an id_token's claims when the provider delivers
	// one (fragment/hybrid response types). Diagnostics only; the bridge
	// never verifies or exchanges tokens — SV2 does that itself.
	Subject    string
	Params     map[string]string
	ReceivedAt time.Time
}

// Extract parses an invocation payload as a callback URI and normalizes it
// into an Artifact. Pure transform, no retries, no side effects.
func Extract(inv Invocation) (*Artifact, error) {
	u, err := url.Parse(inv.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallbackURI, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: no scheme in %q", ErrMalformedCallbackURI, truncate(inv.Payload, 40))
	}

	params := mergeParams(u)

	if errCode := params["error"]; errCode != "" {
		return nil, &ProviderDenialError{Code: errCode, Description: params["error_description"]}
	}

	code := params["code"]
	if code == "" {
		return nil, ErrMissingAuthorizationCode
	}
	// The code is later used to build filesystem content read by an external
	// binary; refuse anything that could smuggle a path or terminal noise.
	if !safeCode(code) {
		return nil, fmt.Errorf("%w: code contains path or control characters", ErrMalformedCallbackURI)
	}

	art := &Artifact{
		Code:         code,
		State:        params["state"],
		SessionState: params["session_state"],
		Issuer:       params["iss"],
		Params:       params,
		ReceivedAt:   time.Now(),
	}
	if raw := params["id_token"]; raw != "" {
		if tok, err := jwt.ParseInsecure([]byte(raw)); err == nil {
			art.Subject = tok.Subject()
		}
	}
	return art, nil
}

// mergeParams flattens the query and fragment parameters, fragment winning
// ties. Keycloak delivers via query for response_type=code, via fragment for
// implicit/hybrid; both must work.
func mergeParams(u *url.URL) map[string]string {
	params := map[string]string{}
	for _, raw := range []string{u.RawQuery, u.Fragment} {
		if raw == "" {
			continue
		}
		values, err := url.ParseQuery(raw)
		if err != nil {
			continue
		}
		for k, v := range values {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}
	return params
}

func safeCode(code string) bool {
	for _, r := range code {
		if r < 0x20 || r == 0x7f || r == '/' || r == '\\' {
			return false
		}
	}
	return !strings.Contains(code, "..")
}

// SanitizeCode shortens an authorization code for logging. Full codes never
// reach the log or the invocation store.
func SanitizeCode(code string) string {
	return truncate(code, 12)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
