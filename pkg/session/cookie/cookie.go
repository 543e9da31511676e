// Package cookie resolves the framework session of an HTTP request from its
// session cookie.
//
// Two cookie formats are supported. By default the cookie value is the raw
// session id. When a signing key is configured the cookie carries an
// HS256-signed JWT whose "sid" claim is the session id; tokens with a bad
// signature, a foreign algorithm or an elapsed expiry resolve to no session.
package cookie

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/actiongate/pkg/debug"
	"github.com/rhuss/actiongate/pkg/session"
)

// DefaultName is the cookie consulted when no name is configured.
const DefaultName = "session"

var (
	// ErrNoSession is returned by SessionID when the request carries no
	// usable session cookie.
	ErrNoSession = errors.New("no session cookie")

	// ErrInvalidToken is returned by SessionID for signed cookies that fail
	// verification.
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims is the payload of a signed session cookie.
type Claims struct {
	SessionID string `json:"sid"`
	jwtlib.RegisteredClaims
}

// Resolver maps requests to sessions.
type Resolver struct {
	name   string
	key    []byte
	issuer string
	lookup session.Lookup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCookieName sets the cookie name used to load session ids.
func WithCookieName(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.name = name
		}
	}
}

// WithSigningKey switches the resolver to signed-cookie mode.
func WithSigningKey(key []byte) Option {
	return func(r *Resolver) {
		if len(key) > 0 {
			r.key = key
		}
	}
}

// WithIssuer requires signed cookies to carry the given iss claim.
func WithIssuer(issuer string) Option {
	return func(r *Resolver) { r.issuer = issuer }
}

// New creates a resolver backed by lookup.
func New(lookup session.Lookup, opts ...Option) *Resolver {
	r := &Resolver{
		name:   DefaultName,
		lookup: lookup,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Signed reports whether the resolver verifies signed cookies.
func (r *Resolver) Signed() bool {
	return len(r.key) > 0
}

// SessionID extracts the session id from the request cookie.
func (r *Resolver) SessionID(req *http.Request) (string, error) {
	c, err := req.Cookie(r.name)
	if err != nil || c.Value == "" {
		return "", ErrNoSession
	}
	if !r.Signed() {
		return c.Value, nil
	}
	return r.verify(c.Value)
}

func (r *Resolver) verify(raw string) (string, error) {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	}
	if r.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(r.issuer))
	}

	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (interface{}, error) {
		return r.key, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

// Resolve returns the session of req. A request without a usable cookie, or
// whose session is unknown or expired, resolves to (nil, nil). Only backend
// failures of the lookup are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (session.Session, error) {
	id, err := r.SessionID(req)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			debug.Log("session", "rejected session cookie", "error", err)
		}
		return nil, nil
	}

	s, err := r.lookup.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			debug.Log("session", "session not found")
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}
