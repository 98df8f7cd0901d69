package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hekayaty-backend/internal/model"
)

func (r *Repository) GetBookmark(ctx context.Context, userID, storyID int) (*model.Bookmark, error) {
	query := `
		SELECT id, user_id, story_id, created_at
		FROM bookmarks
		WHERE user_id = $1 AND story_id = $2
	`

	b := &model.Bookmark{}
	err := r.pool.QueryRow(ctx, query, userID, storyID).Scan(
		&b.ID, &b.UserID, &b.StoryID, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return b, nil
}

func (r *Repository) GetBookmarks(ctx context.Context, userID int) ([]*model.Story, error) {
	// Returns the bookmarked stories themselves, newest bookmark first.
	query := `
		SELECT s.id, s.title, s.description, s.content, s.cover_image, s.author_id,
			s.is_premium, s.is_published, s.is_short_story, s.created_at, s.updated_at
		FROM stories s
		INNER JOIN bookmarks b ON b.story_id = s.id
		WHERE b.user_id = $1
		ORDER BY b.id DESC
	`
	return r.collectStories(ctx, query, userID)
}

func (r *Repository) CreateBookmark(ctx context.Context, userID, storyID int) (*model.Bookmark, error) {
	query := `
		INSERT INTO bookmarks (user_id, story_id)
		VALUES ($1, $2)
		RETURNING id, user_id, story_id, created_at
	`

	b := &model.Bookmark{}
	err := r.pool.QueryRow(ctx, query, userID, storyID).Scan(
		&b.ID, &b.UserID, &b.StoryID, &b.CreatedAt,
	)
	if err != nil {
		if terr := translateConstraint(err); terr != err {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}
	return b, nil
}

func (r *Repository) DeleteBookmark(ctx context.Context, userID, storyID int) (bool, error) {
	query := `DELETE FROM bookmarks WHERE user_id = $1 AND story_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, storyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
