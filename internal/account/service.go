// Package account implements registration, login and user management on
// top of a storage.UserStore.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/userhub/internal/auth"
	"github.com/hongminglow/userhub/internal/models"
	"github.com/hongminglow/userhub/internal/storage"
)

var (
	// ErrConflict is the base for uniqueness violations.
	ErrConflict      = errors.New("conflict")
	ErrUsernameTaken = fmt.Errorf("%w: username already registered", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrConflict)

	// ErrInvalidCredentials is returned for an unknown email and a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPage        = errors.New("skip and limit must be non-negative")
)

// TokenIssuer mints access tokens for a subject.
type TokenIssuer interface {
	Generate(subject string) (string, error)
}

// NewUser is the input for registration and administrative creation.
type NewUser struct {
	Username    string
	Email       string
	Password    string
	IsActive    bool
	IsSuperuser bool
}

// Service owns the account rules. It holds no mutable state of its own.
type Service struct {
	store         storage.UserStore
	tokens        TokenIssuer
	requireActive bool
}

// NewService constructs the service.
func NewService(store storage.UserStore, tokens TokenIssuer, requireActive bool) *Service {
	return &Service{store: store, tokens: tokens, requireActive: requireActive}
}

// Register creates an active, non-superuser account and returns its id.
func (s *Service) Register(ctx context.Context, username, email, password string) (int64, error) {
	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return 0, err
	}
	user, err := s.insert(ctx, NewUser{
		Username: username,
		Email:    email,
		Password: password,
		IsActive: true,
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Create is the administrative variant of Register that honors the active
// and superuser flags and returns the full record.
func (s *Service) Create(ctx context.Context, in NewUser) (models.User, error) {
	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return models.User{}, err
	}
	return s.insert(ctx, in)
}

// Login verifies the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if !auth.VerifyPassword(password, user.HashedPassword) {
		return "", ErrInvalidCredentials
	}
	if s.requireActive && !user.IsActive {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	if skip < 0 || limit < 0 {
		return nil, ErrInvalidPage
	}
	return s.store.ListUsers(ctx, skip, limit)
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	return user, mapStoreError(err)
}

// Update applies a partial update. The password is re-hashed only when
// supplied; omitted fields keep their stored values.
func (s *Service) Update(ctx context.Context, id int64, patch models.UserUpdate) (models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.User{}, mapStoreError(err)
	}

	patch.Apply(&user)
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.HashedPassword = hash
	}

	updated, err := s.store.UpdateUser(ctx, user)
	return updated, mapStoreError(err)
}

// Delete removes a user and returns the removed record.
func (s *Service) Delete(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.DeleteUser(ctx, id)
	return user, mapStoreError(err)
}

// ensureAvailable runs the pre-insert uniqueness checks. They are not atomic
// with the insert; insert maps a losing race onto the same errors.
func (s *Service) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *Service) insert(ctx context.Context, in NewUser) (models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.store.CreateUser(ctx, models.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		IsActive:       in.IsActive,
		IsSuperuser:    in.IsSuperuser,
	})
	if err != nil {
		return models.User{}, mapStoreError(err)
	}
	return created, nil
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, storage.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, storage.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, storage.ErrAlreadyExists):
		return ErrConflict
	default:
		return err
	}
}
