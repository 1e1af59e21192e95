package callback

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInvocation means the process arguments or HTTP request did
	// not form a recognizable callback delivery.
	ErrInvalidInvocation = errors.New("invalid invocation")
	// ErrMalformedCallbackURI means the payload did not parse as a URI.
	ErrMalformedCallbackURI = errors.New("malformed callback URI")
	// ErrMissingAuthorizationCode means the URI parsed but carried no code
	// parameter. Distinct from malformed input and from provider denial.
	ErrMissingAuthorizationCode = errors.New("missing authorization code")
)

// ProviderDenialError is an identity-provider error parameter present in the
// callback (e.g. error=access_denied). The user or provider refused the
// authorization; this is not a bridge bug and must not be reported as a
// missing code.
type ProviderDenialError struct {
	Code        string
	Description string
}

func (e *ProviderDenialError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("provider denied authorization: %s", e.Code)
	}
	return fmt.Sprintf("provider denied authorization: %s (%s)", e.Code, e.Description)
}
