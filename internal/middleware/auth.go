package middleware

import (
	"net/http"
	"skillbridge/internal/api"
	"skillbridge/internal/ctxdata"
	"skillbridge/internal/logging"
	"skillbridge/internal/notice"
	"skillbridge/internal/session"

	"go.uber.org/zap"
)

const LoginPath = "/login"

// Credentials copies the inbound Cookie header into the request context, so
// every API call made while serving the request carries it.
func Credentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Cookie"); header != "" {
			r = r.WithContext(ctxdata.WithCookieHeader(r.Context(), header))
		}
		next.ServeHTTP(w, r)
	})
}

// NewRequireSession resolves the session on every request and scopes the
// user to the request context. Without a session the browser is sent to the
// login page; htmx requests get HX-Redirect because a 302 would be swapped
// into the fragment.
func NewRequireSession(resolver *session.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user := resolver.Resolve(ctx, r.Header.Get("Cookie"))
			if user == nil {
				if logger, ok := logging.GetFromContext(ctx); ok {
					logger.Info(ctx, "no session", zap.String("path", r.URL.Path))
				}
				if notice.IsHTMX(r) {
					w.Header().Set("HX-Redirect", LoginPath)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithUser(ctx, user)))
		})
	}
}

// NewRequireRole lets through users with role and hands everyone else to
// forbidden. It must run after NewRequireSession.
func NewRequireRole(role api.Role, forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user, ok := session.UserFromContext(ctx)
			if !ok || user.Role != role {
				if logger, ok := logging.GetFromContext(ctx); ok {
					logger.Info(ctx, "role denied",
						zap.String("path", r.URL.Path),
						zap.String("required", string(role)),
					)
				}
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
