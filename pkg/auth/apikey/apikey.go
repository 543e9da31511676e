// Package apikey provides the machine-caller authenticator: a static shared
// secret presented in the X-API-Key header, compared in constant time.
//
// An empty configured secret disables machine access entirely. It never
// means "accept any key".
package apikey

import (
	"context"
	"crypto/subtle"
	"os"

	"github.com/rhuss/actiongate/pkg/auth"
)

// DefaultHeader is the header carrying the machine credential.
const DefaultHeader = "X-API-Key"

// DefaultEnv is the environment variable holding the shared secret.
const DefaultEnv = "IVR_API_KEY"

// machineSubject labels identities admitted by the shared secret.
const machineSubject = "machine"

// KeySource supplies the configured shared secret. It is consulted on every
// check, so a source may re-read its backing store each time.
type KeySource interface {
	APIKey() string
}

// Static is a secret fixed at construction time.
type Static string

// APIKey implements KeySource.
func (s Static) APIKey() string { return string(s) }

// Env reads the named environment variable on every check.
type Env string

// APIKey implements KeySource.
func (e Env) APIKey() string { return os.Getenv(string(e)) }

// Authenticator validates the shared-secret header.
type Authenticator struct {
	header string
	source KeySource
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithHeader overrides the header name.
func WithHeader(name string) Option {
	return func(a *Authenticator) {
		if name != "" {
			a.header = name
		}
	}
}

// New creates an authenticator reading the secret from source. A nil source
// behaves like an unconfigured secret.
func New(source KeySource, opts ...Option) *Authenticator {
	a := &Authenticator{
		header: DefaultHeader,
		source: source,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Header returns the header name consulted by the authenticator.
func (a *Authenticator) Header() string {
	return a.header
}

// Valid reports whether candidate matches the configured secret. It fails
// when either value is empty and otherwise requires an exact, case-sensitive
// match.
func (a *Authenticator) Valid(candidate string) bool {
	if candidate == "" {
		return false
	}
	if a.source == nil {
		return false
	}
	expected := a.source.APIKey()
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(expected)) == 1
}

// Authenticate extracts the header and validates it.
// Returns Yes if valid, No if a key is present but invalid (or no secret is
// configured), Abstain if the header is absent or empty.
func (a *Authenticator) Authenticate(_ context.Context, req auth.Request) auth.AuthResult {
	candidate := req.HeaderValue(a.header)
	if candidate == "" {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	if !a.Valid(candidate) {
		err := auth.ErrUnauthenticated
		if a.source == nil || a.source.APIKey() == "" {
			err = auth.ErrNotConfigured
		}
		return auth.AuthResult{Decision: auth.No, Err: err}
	}

	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{
			Subject: machineSubject,
			Kind:    auth.KindMachine,
		},
	}
}
