// Package auth provides the authentication chain behind the action gate.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A default voter decides when all
// authenticators abstain; it defaults to No so that an empty or
// misconfigured chain authorizes no one.
//
// Authenticators only read their inputs. They never mutate the session or
// the request and never log on the hot path.
package auth
