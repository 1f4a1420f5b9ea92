// Package session turns a bearer token into the identity of the caller.
//
// Nothing in taskdeck reads identity from ambient state: handlers pull the
// *Session out of the request context once and pass it down explicitly.
package session

import (
	"context"
	"strings"

	"github.com/kazz187/taskdeck/pkg/cerr"
)

// Session is the authenticated caller.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	PhotoURL    string
}

// NormalizedEmail is the lower-cased email used for membership and
// invitation matching.
func (s *Session) NormalizedEmail() string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s.Email))
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// ErrUnauthenticated is returned for operations that need a signed-in caller.
func ErrUnauthenticated() error {
	return cerr.NewError(cerr.Unauthenticated, "sign in required", nil)
}

// Require returns the session or an Unauthenticated error.
func Require(ctx context.Context) (*Session, error) {
	s := FromContext(ctx)
	if s == nil || s.UserID == "" {
		return nil, ErrUnauthenticated()
	}
	return s, nil
}
