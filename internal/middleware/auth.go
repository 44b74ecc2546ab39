package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/userhub/internal/auth"
	"github.com/hongminglow/userhub/internal/http/respond"
	"github.com/hongminglow/userhub/internal/logging"
	"github.com/hongminglow/userhub/internal/models"
)

type currentUserKey struct{}

// IdentityResolver turns an Authorization header into a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, authorization string) (models.User, error)
}

// CurrentUser returns the user attached by RequireUser.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(currentUserKey{}).(models.User)
	return user, ok
}

// RequireUser rejects requests whose bearer token does not resolve to an
// account. A missing token gets "Not authenticated"; an invalid token, a
// missing account and an inactive account share one 401 body.
func RequireUser(resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingCredentials):
					respond.Unauthorized(w, "Not authenticated")
				case errors.Is(err, auth.ErrInvalidCredentials):
					respond.Unauthorized(w, "Could not validate credentials")
				default:
					logging.LogError(logger, "resolve identity", err, "request_id", RequestID(r.Context()))
					respond.Error(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), currentUserKey{}, user)))
		})
	}
}
