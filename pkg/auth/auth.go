package auth

import (
	"context"
	"errors"

	"github.com/rhuss/actiongate/pkg/session"
)

// AuthDecision represents the three possible outcomes of authentication.
type AuthDecision int

const (
	// Yes means credentials are valid. The chain stops and the identity is used.
	Yes AuthDecision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means this authenticator cannot handle the request.
	// The chain continues to the next authenticator.
	Abstain
)

// String returns the lower-case name of the decision.
func (d AuthDecision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Abstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // populated only when Decision == Yes
	Err      error     // populated only when Decision == No
}

// Kind classifies how a caller authenticated.
type Kind string

const (
	// KindStaff is a human caller with an authenticated staff session.
	KindStaff Kind = "staff"

	// KindMachine is a trusted machine caller presenting the shared secret.
	KindMachine Kind = "machine"
)

// Identity represents an authenticated caller.
type Identity struct {
	// Subject identifies the caller. For staff sessions it is derived from
	// the staff credential, for machine callers it is a fixed label.
	Subject string

	// Kind records which check admitted the caller.
	Kind Kind

	// Credential is the raw staff credential for staff callers.
	Credential any

	// Metadata carries authenticator-specific data.
	Metadata map[string]string
}

// Header reads a single request header. Lookups are case-insensitive;
// http.Header satisfies it.
type Header interface {
	Get(name string) string
}

// Request is the input an authenticator inspects. Session may be nil when
// the caller has no session; Header may be nil when no headers are known.
type Request struct {
	Session session.Session
	Header  Header
}

// HeaderValue returns the named header or "" when no header reader is set.
func (r Request) HeaderValue(name string) string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get(name)
}

// Authenticator examines request credentials and returns a three-outcome vote.
type Authenticator interface {
	Authenticate(ctx context.Context, req Request) AuthResult
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, req Request) AuthResult

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, req Request) AuthResult {
	return f(ctx, req)
}

// Sentinel errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotConfigured   = errors.New("credential not configured")
)

// Chain evaluates authenticators in order using three-outcome voting.
type Chain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator
}

// NewChain returns a chain that rejects when every authenticator abstains.
func NewChain(authenticators ...Authenticator) *Chain {
	return &Chain{Authenticators: authenticators}
}

// Authenticate runs the chain. Stops on the first Yes or No.
// If all abstain, or the chain is empty, the request is rejected.
func (c *Chain) Authenticate(ctx context.Context, req Request) AuthResult {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, req)
		if result.Decision != Abstain {
			return result
		}
	}

	return AuthResult{
		Decision: No,
		Err:      ErrUnauthenticated,
	}
}
