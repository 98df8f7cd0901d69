package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hekayaty-backend/internal/model"
)

func (r *Repository) GetGenres(ctx context.Context) ([]*model.Genre, error) {
	query := `SELECT id, name, description, icon FROM genres ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	genres := []*model.Genre{}
	for rows.Next() {
		g := &model.Genre{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return genres, nil
}

func (r *Repository) GetGenre(ctx context.Context, id int) (*model.Genre, error) {
	query := `SELECT id, name, description, icon FROM genres WHERE id = $1`

	g := &model.Genre{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.Description, &g.Icon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return g, nil
}

func (r *Repository) CreateGenre(ctx context.Context, ng model.NewGenre) (*model.Genre, error) {
	query := `
		INSERT INTO genres (name, description, icon)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, icon
	`

	g := &model.Genre{}
	err := r.pool.QueryRow(ctx, query, ng.Name, ng.Description, ng.Icon).
		Scan(&g.ID, &g.Name, &g.Description, &g.Icon)
	if err != nil {
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}
	return g, nil
}

func (r *Repository) GetStoryGenres(ctx context.Context, storyID int) ([]*model.Genre, error) {
	// Inner join: a story with no genre rows yields an empty slice.
	query := `
		SELECT g.id, g.name, g.description, g.icon
		FROM genres g
		INNER JOIN story_genres sg ON sg.genre_id = g.id
		WHERE sg.story_id = $1
		ORDER BY g.id
	`

	rows, err := r.pool.Query(ctx, query, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query story genres: %w", err)
	}
	defer rows.Close()

	genres := []*model.Genre{}
	for rows.Next() {
		g := &model.Genre{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return genres, nil
}

func (r *Repository) AddStoryGenre(ctx context.Context, storyID, genreID int) error {
	query := `INSERT INTO story_genres (story_id, genre_id) VALUES ($1, $2)`

	if _, err := r.pool.Exec(ctx, query, storyID, genreID); err != nil {
		if terr := translateConstraint(err); terr != err {
			return terr
		}
		return fmt.Errorf("failed to add story genre: %w", err)
	}
	return nil
}
