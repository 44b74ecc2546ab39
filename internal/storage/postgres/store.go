package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/hongminglow/userhub/internal/models"
	"github.com/hongminglow/userhub/internal/storage"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Unique constraint names created by the users migration.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

const userColumns = `id, username, email, hashed_password, is_active, is_superuser, created_at`

// DBTX is the subset of pgx used by the store. *pgxpool.Pool, pgx.Tx and
// pgxmock pools all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides Postgres-backed persistence for users.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New wraps an existing connection handle. Close is a no-op for stores built
// this way; the caller owns db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewUserStore connects to databaseURL, waits for the server to answer and
// applies pending migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{db: pool, pool: pool}, nil
}

// Connect opens a pool and pings it with exponential backoff.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (username, email, hashed_password, is_active, is_superuser)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	row := s.db.QueryRow(ctx, query, user.Username, user.Email, user.HashedPassword, user.IsActive, user.IsSuperuser)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, writeError("insert user", err)
	}
	return created, nil
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.findOne(ctx, "find user by id", query, id)
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.findOne(ctx, "find user by username", query, username)
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.findOne(ctx, "find user by email", query, email)
}

// ListUsers returns a page of users ordered by id.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := s.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, oops.In("postgres").With("operation", "list users").Wrap(err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.In("postgres").With("operation", "scan user").Wrap(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("postgres").With("operation", "list users").Wrap(err)
	}
	return users, nil
}

// UpdateUser overwrites every mutable column of the row identified by user.ID.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		UPDATE users
		SET username = $2, email = $3, hashed_password = $4, is_active = $5, is_superuser = $6
		WHERE id = $1
		RETURNING ` + userColumns
	row := s.db.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.HashedPassword, user.IsActive, user.IsSuperuser)
	updated, err := scanUser(row)
	if err != nil {
		return models.User{}, writeError("update user", err)
	}
	return updated, nil
}

// DeleteUser removes a user and returns the deleted row.
func (s *Store) DeleteUser(ctx context.Context, id int64) (models.User, error) {
	const query = `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns
	return s.findOne(ctx, "delete user", query, id)
}

func (s *Store) findOne(ctx context.Context, operation, query string, arg any) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, err
		}
		return models.User{}, oops.In("postgres").With("operation", operation).Wrap(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.IsActive, &user.IsSuperuser, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// writeError maps unique violations onto the storage conflict sentinels.
func writeError(operation string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case usernameConstraint:
			return storage.ErrDuplicateUsername
		case emailConstraint:
			return storage.ErrDuplicateEmail
		default:
			return storage.ErrAlreadyExists
		}
	}
	return oops.In("postgres").With("operation", operation).Wrap(err)
}
