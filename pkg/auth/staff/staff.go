// Package staff provides the session authenticator: a caller whose session
// carries a staff credential is an authenticated human.
package staff

import (
	"context"
	"strconv"

	"github.com/rhuss/actiongate/pkg/auth"
	"github.com/rhuss/actiongate/pkg/session"
)

// Authenticator votes Yes for sessions with a non-nil staff credential and
// abstains otherwise. It never votes No: a missing session is not an invalid
// credential, and later authenticators still get their turn.
type Authenticator struct{}

var _ auth.Authenticator = Authenticator{}

// Authenticate implements auth.Authenticator.
func (Authenticator) Authenticate(_ context.Context, req auth.Request) auth.AuthResult {
	credential := session.StaffFrom(req.Session)
	if credential == nil {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{
			Subject:    subject(credential),
			Kind:       auth.KindStaff,
			Credential: credential,
		},
	}
}

func subject(credential any) string {
	switch c := credential.(type) {
	case *session.Staff:
		return "staff:" + strconv.FormatInt(c.ID, 10)
	case session.Staff:
		return "staff:" + strconv.FormatInt(c.ID, 10)
	default:
		return "staff"
	}
}
