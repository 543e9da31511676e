// Package gate decides, for each action invocation, whether the caller may
// proceed to the action or must be diverted to the login flow.
//
// A caller proceeds when its session carries a staff credential, or, failing
// that, when it presents the configured machine secret in the X-API-Key
// header. Everyone else receives the Login outcome. The gate keeps no state
// between invocations, performs no logging and never touches the session or
// the request; errors and panics raised by the next stage pass through it
// untouched.
package gate

import (
	"context"

	"github.com/rhuss/actiongate/pkg/auth"
	"github.com/rhuss/actiongate/pkg/auth/apikey"
	"github.com/rhuss/actiongate/pkg/auth/staff"
	"github.com/rhuss/actiongate/pkg/session"
)

// Outcome is the result token of a pipeline stage.
type Outcome string

// Login is the outcome returned for unauthenticated callers.
const Login Outcome = "login"

// Proceed runs the next stage of the pipeline.
type Proceed func(ctx context.Context) (Outcome, error)

// Invocation carries what the gate inspects for one action call.
type Invocation struct {
	// Session is the caller's session, or nil when there is none.
	Session session.Session

	// Header reads inbound request headers case-insensitively.
	Header auth.Header
}

// Gate guards a pipeline stage.
type Gate interface {
	Evaluate(ctx context.Context, inv Invocation, proceed Proceed) (Outcome, error)
}

// Func adapts a function to the Gate interface.
type Func func(ctx context.Context, inv Invocation, proceed Proceed) (Outcome, error)

// Evaluate calls f.
func (f Func) Evaluate(ctx context.Context, inv Invocation, proceed Proceed) (Outcome, error) {
	return f(ctx, inv, proceed)
}

// Authority is the staff-session / machine-secret gate.
type Authority struct {
	chain *auth.Chain
}

var _ Gate = (*Authority)(nil)

// Option configures an Authority built by New.
type Option func(*options)

type options struct {
	header string
}

// WithHeader overrides the machine credential header (default X-API-Key).
func WithHeader(name string) Option {
	return func(o *options) { o.header = name }
}

// New builds the gate: the staff session check first, then the machine
// secret supplied by source. A nil source, or one yielding "", admits no
// machine caller.
func New(source apikey.KeySource, opts ...Option) *Authority {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return NewWithChain(auth.NewChain(
		staff.Authenticator{},
		apikey.New(source, apikey.WithHeader(o.header)),
	))
}

// NewWithChain builds a gate over an arbitrary authentication chain.
// Anything other than a Yes vote diverts to Login.
func NewWithChain(chain *auth.Chain) *Authority {
	return &Authority{chain: chain}
}

// Decide runs the authentication chain without invoking anything.
func (a *Authority) Decide(ctx context.Context, inv Invocation) auth.AuthResult {
	return a.chain.Authenticate(ctx, auth.Request{
		Session: inv.Session,
		Header:  inv.Header,
	})
}

// Evaluate invokes proceed for authenticated callers and returns its result
// unchanged; proceed receives a context carrying the caller's
// auth.Identity. Unauthenticated callers get Login and proceed is not run.
func (a *Authority) Evaluate(ctx context.Context, inv Invocation, proceed Proceed) (Outcome, error) {
	result := a.Decide(ctx, inv)
	if result.Decision != auth.Yes || result.Identity == nil {
		return Login, nil
	}
	return proceed(auth.SetIdentity(ctx, result.Identity))
}

// Chain composes gates so that each gate's proceed runs the next gate and
// the last gate's proceed runs the terminal stage. Chain() with no gates
// simply runs the terminal stage.
func Chain(gates ...Gate) Gate {
	return Func(func(ctx context.Context, inv Invocation, proceed Proceed) (Outcome, error) {
		return run(ctx, gates, inv, proceed)
	})
}

func run(ctx context.Context, gates []Gate, inv Invocation, terminal Proceed) (Outcome, error) {
	if len(gates) == 0 {
		return terminal(ctx)
	}
	return gates[0].Evaluate(ctx, inv, func(ctx context.Context) (Outcome, error) {
		return run(ctx, gates[1:], inv, terminal)
	})
}
