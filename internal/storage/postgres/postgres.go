// Package postgres implements the storage contract over PostgreSQL with
// raw SQL via pgxpool. Contract-equivalent to storage/memory and verified
// by the same suite.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/storage"
)

type Repository struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Repository)(nil)

// NewRepository wraps an already-connected pool. Callers own the pool's
// lifecycle.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          SERIAL PRIMARY KEY,
	username    TEXT NOT NULL,
	password    TEXT NOT NULL,
	email       TEXT NOT NULL,
	full_name   TEXT,
	bio         TEXT,
	avatar_url  TEXT,
	is_premium  BOOLEAN NOT NULL DEFAULT false,
	is_author   BOOLEAN NOT NULL DEFAULT false,
	is_admin    BOOLEAN NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username));
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email));

CREATE TABLE IF NOT EXISTS stories (
	id             SERIAL PRIMARY KEY,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	content        TEXT NOT NULL DEFAULT '',
	cover_image    TEXT,
	author_id      INTEGER NOT NULL REFERENCES users(id),
	is_premium     BOOLEAN NOT NULL DEFAULT false,
	is_published   BOOLEAN NOT NULL DEFAULT false,
	is_short_story BOOLEAN NOT NULL DEFAULT false,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_stories_author ON stories (author_id);
CREATE INDEX IF NOT EXISTS idx_stories_published_created ON stories (is_published, created_at DESC);

CREATE TABLE IF NOT EXISTS genres (
	id          SERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	icon        TEXT
);

CREATE TABLE IF NOT EXISTS story_genres (
	story_id INTEGER NOT NULL REFERENCES stories(id),
	genre_id INTEGER NOT NULL REFERENCES genres(id),
	PRIMARY KEY (story_id, genre_id)
);

CREATE TABLE IF NOT EXISTS ratings (
	id         SERIAL PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	story_id   INTEGER NOT NULL REFERENCES stories(id),
	rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	review     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT ratings_user_story_key UNIQUE (user_id, story_id)
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id         SERIAL PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	story_id   INTEGER NOT NULL REFERENCES stories(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT bookmarks_user_story_key UNIQUE (user_id, story_id)
);
`

// EnsureSchema creates the tables and seeds the default genres and the
// bootstrap admin. Safe to call on every startup: DDL is IF NOT EXISTS
// and seeding is guarded by emptiness checks.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var genreCount int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM genres`).Scan(&genreCount); err != nil {
		return fmt.Errorf("failed to count genres: %w", err)
	}
	if genreCount == 0 {
		for _, g := range storage.DefaultGenres() {
			_, err := r.pool.Exec(ctx,
				`INSERT INTO genres (name, description, icon) VALUES ($1, $2, $3)`,
				g.Name, g.Description, g.Icon)
			if err != nil {
				return fmt.Errorf("failed to seed genre %q: %w", g.Name, err)
			}
		}
	}

	var adminCount int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_admin = true`).Scan(&adminCount); err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(storage.SeedAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		_, err = r.pool.Exec(ctx,
			`INSERT INTO users (username, password, email, is_admin) VALUES ($1, $2, $3, true)`,
			storage.SeedAdminUsername, string(hash), storage.SeedAdminEmail)
		if err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	}

	return nil
}

// translateConstraint maps driver constraint violations onto the model
// sentinels so both backends surface the same error taxonomy.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		switch pgErr.ConstraintName {
		case "idx_users_username_lower":
			return model.ErrUsernameTaken
		case "idx_users_email_lower":
			return model.ErrEmailTaken
		case "story_genres_pkey":
			return model.ErrDuplicateStoryGenre
		case "ratings_user_story_key":
			return model.ErrAlreadyRated
		case "bookmarks_user_story_key":
			return model.ErrAlreadyBookmarked
		}
	case "23503": // foreign_key_violation
		return model.ErrInvalidReference
	}
	return err
}
