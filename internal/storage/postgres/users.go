package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"hekayaty-backend/internal/model"
)

const userColumns = `id, username, password, email, full_name, bio, avatar_url,
	is_premium, is_author, is_admin, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Password, &u.Email, &u.FullName, &u.Bio,
		&u.AvatarURL, &u.IsPremium, &u.IsAuthor, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *Repository) CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error) {
	query := `
		INSERT INTO users (username, password, email, full_name, bio, avatar_url,
			is_premium, is_author, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query,
		nu.Username, nu.Password, nu.Email, nu.FullName, nu.Bio, nu.AvatarURL,
		nu.IsPremium, nu.IsAuthor, nu.IsAdmin,
	))
	if err != nil {
		if terr := translateConstraint(err); terr != err {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (r *Repository) UpdateUser(ctx context.Context, id int, upd model.UserUpdate) (*model.User, error) {
	sets := []string{}
	args := []interface{}{id}
	argIndex := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if upd.Password != nil {
		addSet("password", *upd.Password)
	}
	if upd.Email != nil {
		addSet("email", *upd.Email)
	}
	if upd.FullName != nil {
		addSet("full_name", *upd.FullName)
	}
	if upd.Bio != nil {
		addSet("bio", *upd.Bio)
	}
	if upd.AvatarURL != nil {
		addSet("avatar_url", *upd.AvatarURL)
	}
	if upd.IsPremium != nil {
		addSet("is_premium", *upd.IsPremium)
	}
	if upd.IsAuthor != nil {
		addSet("is_author", *upd.IsAuthor)
	}

	if len(sets) == 0 {
		// Nothing to merge; behave like a lookup.
		return r.GetUser(ctx, id)
	}

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $1 RETURNING `+userColumns,
		strings.Join(sets, ", "),
	)

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if terr := translateConstraint(err); terr != err {
			return nil, terr
		}
		// scanUser already wraps failures with context; no second wrap.
		return nil, err
	}
	return u, nil
}

func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *Repository) CountSubscribers(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_premium = true`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}
