package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/hongminglow/userhub/internal/models"
	"github.com/hongminglow/userhub/internal/storage"
)

var (
	// ErrMissingCredentials indicates the request carried no bearer token.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials covers a bad token as well as a token whose
	// account no longer resolves. Callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("could not validate credentials")
)

// TokenVerifier recovers the subject from a bearer token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder looks a user up by email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// Resolver turns an Authorization header into the current user record. It
// performs one store lookup per call and caches nothing.
type Resolver struct {
	tokens        TokenVerifier
	users         UserFinder
	requireActive bool
}

// NewResolver creates a resolver. When requireActive is set, inactive
// accounts resolve to ErrInvalidCredentials.
func NewResolver(tokens TokenVerifier, users UserFinder, requireActive bool) *Resolver {
	return &Resolver{tokens: tokens, users: users, requireActive: requireActive}
}

// Resolve validates the header value and loads the account it names.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (models.User, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		return models.User{}, ErrMissingCredentials
	}

	email, err := r.tokens.Verify(token)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if r.requireActive && !user.IsActive {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
