package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daycast/backend/internal/models"
)

// ErrNoUser is returned when a user lookup matches nothing.
var ErrNoUser = errors.New("store: user not found")

// PostgresStore handles user CRUD against PostgreSQL. Profile and
// preferences live in JSONB columns; pgx marshals them through
// encoding/json.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username    VARCHAR(50)  UNIQUE NOT NULL,
			name        VARCHAR(100) NOT NULL,
			email       VARCHAR(255) UNIQUE NOT NULL,
			password    VARCHAR(255) NOT NULL,
			role        VARCHAR(20)  NOT NULL DEFAULT 'user',
			profile     JSONB        NOT NULL DEFAULT '{}',
			preferences JSONB        NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ  DEFAULT NOW(),
			updated_at  TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	return err
}

const userColumns = `id, username, name, email, password, role, profile, preferences, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Password,
		&u.Role, &u.Profile, &u.Preferences, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoUser
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, name, email, hashedPassword string) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, name, email, password, preferences)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		username, name, email, hashedPassword, models.DefaultPreferences(),
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpdateProfile applies a partial profile update and returns the fresh
// record. Fields left nil in the patch keep their stored value.
func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, patch models.ProfileUpdate) (*models.User, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(u)

	return scanUser(s.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = $2, profile = $3, preferences = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, u.Name, u.Profile, u.Preferences))
}

// SetAvatarKey records the object-store key of the user's avatar.
func (s *PostgresStore) SetAvatarKey(ctx context.Context, id, key string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`UPDATE users
		 SET profile = jsonb_set(profile, '{avatarKey}', to_jsonb($2::text)), updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, key))
}
