package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hekayaty-backend/internal/model"
)

func (r *Repository) GetRating(ctx context.Context, userID, storyID int) (*model.Rating, error) {
	query := `
		SELECT id, user_id, story_id, rating, review, created_at
		FROM ratings
		WHERE user_id = $1 AND story_id = $2
	`

	rating := &model.Rating{}
	err := r.pool.QueryRow(ctx, query, userID, storyID).Scan(
		&rating.ID, &rating.UserID, &rating.StoryID,
		&rating.Rating, &rating.Review, &rating.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

func (r *Repository) GetRatings(ctx context.Context, storyID int) ([]*model.RatingWithUser, error) {
	// Each rating carries the partial user projection for display.
	query := `
		SELECT r.id, r.user_id, r.story_id, r.rating, r.review, r.created_at,
			u.id, u.username, u.full_name, u.avatar_url
		FROM ratings r
		INNER JOIN users u ON u.id = r.user_id
		WHERE r.story_id = $1
		ORDER BY r.id
	`

	rows, err := r.pool.Query(ctx, query, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	ratings := []*model.RatingWithUser{}
	for rows.Next() {
		rw := &model.RatingWithUser{}
		err := rows.Scan(
			&rw.ID, &rw.UserID, &rw.StoryID, &rw.Rating.Rating, &rw.Review, &rw.CreatedAt,
			&rw.User.ID, &rw.User.Username, &rw.User.FullName, &rw.User.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ratings, nil
}

func (r *Repository) CreateRating(ctx context.Context, nr model.NewRating) (*model.Rating, error) {
	query := `
		INSERT INTO ratings (user_id, story_id, rating, review)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, story_id, rating, review, created_at
	`

	rating := &model.Rating{}
	err := r.pool.QueryRow(ctx, query, nr.UserID, nr.StoryID, nr.Rating, nr.Review).Scan(
		&rating.ID, &rating.UserID, &rating.StoryID,
		&rating.Rating, &rating.Review, &rating.CreatedAt,
	)
	if err != nil {
		if terr := translateConstraint(err); terr != err {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}
	return rating, nil
}

func (r *Repository) GetAverageRating(ctx context.Context, storyID int) (float64, error) {
	// COALESCE keeps the zero-ratings case at 0 rather than NULL.
	query := `SELECT COALESCE(AVG(rating), 0)::float8 FROM ratings WHERE story_id = $1`

	var avg float64
	if err := r.pool.QueryRow(ctx, query, storyID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to get average rating: %w", err)
	}
	return avg, nil
}
