// Package memory provides an in-process storage.UserStore. Data lives only as
// long as the process.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/userhub/internal/models"
	"github.com/hongminglow/userhub/internal/storage"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Store keeps users in a map keyed by id. Ids are never reused.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
	now    func() time.Time
}

// NewUserStore creates an empty store.
func NewUserStore() *Store {
	return &Store{users: make(map[int64]models.User), now: time.Now}
}

// Close is a no-op kept for parity with the postgres store.
func (s *Store) Close() {}

// CreateUser inserts a new user and assigns its id.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(user, 0); err != nil {
		return models.User{}, err
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = s.now().UTC()
	s.users[user.ID] = user
	return user, nil
}

// FindByID fetches a user by id.
func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	return s.findFirst(func(u models.User) bool { return u.Username == username })
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	return s.findFirst(func(u models.User) bool { return u.Email == email })
}

// ListUsers returns users ordered by id.
func (s *Store) ListUsers(_ context.Context, offset, limit int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return []models.User{}, nil
	}
	end := len(all)
	if limit >= 0 && limit < end-offset {
		end = offset + limit
	}
	return all[offset:end], nil
}

// UpdateUser replaces every mutable column of an existing user.
func (s *Store) UpdateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if err := s.checkUnique(user, user.ID); err != nil {
		return models.User{}, err
	}
	user.CreatedAt = existing.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

// DeleteUser removes a user and returns the removed row.
func (s *Store) DeleteUser(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	delete(s.users, id)
	return user, nil
}

func (s *Store) findFirst(match func(models.User) bool) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// checkUnique mirrors the users_username_key and users_email_key constraints.
// Caller must hold the write lock.
func (s *Store) checkUnique(user models.User, selfID int64) error {
	for id, u := range s.users {
		if id == selfID {
			continue
		}
		if u.Username == user.Username {
			return storage.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return storage.ErrDuplicateEmail
		}
	}
	return nil
}
