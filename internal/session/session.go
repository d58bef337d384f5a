// Package session resolves the signed-in user from the browser's cookies and
// scopes it to a single request.
package session

import (
	"context"
	"skillbridge/internal/api"
	"skillbridge/internal/logging"

	"go.uber.org/zap"
)

// UserSource is the "who am I" endpoint of the API.
type UserSource interface {
	CurrentUser(ctx context.Context) (*api.User, error)
}

type Resolver struct {
	users UserSource
}

func NewResolver(users UserSource) *Resolver {
	return &Resolver{users: users}
}

// Resolve forwards cookieHeader verbatim and returns the session's user, or
// nil when there is none. Every failure collapses to nil. Nothing is cached:
// each protected page load resolves again.
func (r *Resolver) Resolve(ctx context.Context, cookieHeader string) *api.User {
	if cookieHeader == "" {
		return nil
	}

	user, err := r.users.CurrentUser(api.WithCredentials(ctx, cookieHeader))
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Debug(ctx, "session not resolved", zap.Error(err))
		}
		return nil
	}
	if user == nil || user.ID == "" {
		return nil
	}
	return user
}

type userKey struct{}

var userKeyInstance = userKey{}

// WithUser scopes user to ctx. It is set once per request by the auth
// middleware and never shared between requests.
func WithUser(ctx context.Context, user *api.User) context.Context {
	return context.WithValue(ctx, userKeyInstance, user)
}

func UserFromContext(ctx context.Context) (*api.User, bool) {
	user, ok := ctx.Value(userKeyInstance).(*api.User)
	return user, ok && user != nil
}
