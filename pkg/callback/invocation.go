package callback

import (
	"fmt"
	"net/http"
	"strings"
)

// Scheme is the custom URI scheme registered for SV2 OAuth callbacks.
// The desktop MIME-handler registration passes the full URI as argv[1].
const Scheme = "dreamtonics-svstudio2"

// Origin identifies how an invocation reached the bridge.
type Origin string

const (
	// OriginArgv is an OS URI-scheme dispatch (browser handed the custom
	// scheme to the desktop environment, which exec'd the bridge).
	OriginArgv Origin = "cli-argv"
	// OriginHTTP is a loopback redirect hitting the local listener.
	OriginHTTP Origin = "http-request"
)

// Invocation is a raw callback delivery, captured once and consumed once.
type Invocation struct {
	Origin  Origin
	Payload string
}

// FromArgs builds an invocation from the positional arguments the OS
// dispatcher passes. Exactly one argument carrying the custom scheme is
// accepted; anything else is an invalid invocation.
func FromArgs(args []string) (Invocation, error) {
	if len(args) != 1 {
		return Invocation{}, fmt.Errorf("%w: expected exactly one URI argument, got %d", ErrInvalidInvocation, len(args))
	}
	uri := strings.TrimSpace(args[0])
	if !strings.HasPrefix(uri, Scheme+"://") {
		return Invocation{}, fmt.Errorf("%w: argument does not carry the %s scheme", ErrInvalidInvocation, Scheme)
	}
	return Invocation{Origin: OriginArgv, Payload: uri}, nil
}

// FromRequest rebuilds the callback URI from a loopback redirect so both
// delivery paths feed the extractor the same payload shape. Browsers never
// send fragments over the wire, so only the query survives here.
func FromRequest(r *http.Request) Invocation {
	payload := Scheme + "://auth/callback"
	if r.URL.RawQuery != "" {
		payload += "?" + r.URL.RawQuery
	}
	return Invocation{Origin: OriginHTTP, Payload: payload}
}
