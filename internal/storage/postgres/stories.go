package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/storage"
	"hekayaty-backend/pkg/database"
)

const storyColumns = `id, title, description, content, cover_image, author_id,
	is_premium, is_published, is_short_story, created_at, updated_at`

func scanStory(row pgx.Row) (*model.Story, error) {
	s := &model.Story{}
	err := row.Scan(
		&s.ID, &s.Title, &s.Description, &s.Content, &s.CoverImage, &s.AuthorID,
		&s.IsPremium, &s.IsPublished, &s.IsShortStory, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan story: %w", err)
	}
	return s, nil
}

func (r *Repository) collectStories(ctx context.Context, query string, args ...interface{}) ([]*model.Story, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	stories := []*model.Story{}
	for rows.Next() {
		s := &model.Story{}
		err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Content, &s.CoverImage, &s.AuthorID,
			&s.IsPremium, &s.IsPublished, &s.IsShortStory, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		stories = append(stories, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return stories, nil
}

func (r *Repository) GetStory(ctx context.Context, id int) (*model.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	return scanStory(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) GetStories(ctx context.Context, f storage.StoryFilter) ([]*model.Story, error) {
	conditions := []string{"is_published = true"}
	args := []interface{}{}
	argIndex := 1

	if f.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", argIndex))
		args = append(args, *f.AuthorID)
		argIndex++
	}
	if f.GenreID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT story_id FROM story_genres WHERE genre_id = $%d)", argIndex))
		args = append(args, *f.GenreID)
		argIndex++
	}
	if f.IsPremium != nil {
		conditions = append(conditions, fmt.Sprintf("is_premium = $%d", argIndex))
		args = append(args, *f.IsPremium)
		argIndex++
	}
	if f.IsShortStory != nil {
		conditions = append(conditions, fmt.Sprintf("is_short_story = $%d", argIndex))
		args = append(args, *f.IsShortStory)
		argIndex++
	}

	limit := f.Limit
	if limit <= 0 {
		limit = storage.DefaultStoryLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT `+storyColumns+`
		FROM stories
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), argIndex, argIndex+1)
	args = append(args, limit, offset)

	return r.collectStories(ctx, query, args...)
}

func (r *Repository) GetFeaturedStories(ctx context.Context, limit int) ([]*model.Story, error) {
	if limit <= 0 {
		limit = storage.DefaultStoryLimit
	}

	query := `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE is_published = true
		ORDER BY random()
		LIMIT $1
	`
	return r.collectStories(ctx, query, limit)
}

func (r *Repository) GetTopRatedStories(ctx context.Context, limit int) ([]*model.StoryWithRating, error) {
	if limit <= 0 {
		limit = storage.DefaultStoryLimit
	}

	// Per-story averages pre-aggregated in a grouped subquery, then merged
	// into the published story list.
	query := `
		SELECT s.id, s.title, s.description, s.content, s.cover_image, s.author_id,
			s.is_premium, s.is_published, s.is_short_story, s.created_at, s.updated_at,
			COALESCE(ra.avg_rating, 0)::float8 AS avg_rating
		FROM stories s
		LEFT JOIN (
			SELECT story_id, AVG(rating) AS avg_rating
			FROM ratings
			GROUP BY story_id
		) ra ON ra.story_id = s.id
		WHERE s.is_published = true
		ORDER BY COALESCE(ra.avg_rating, 0) DESC, s.created_at DESC, s.id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top rated stories: %w", err)
	}
	defer rows.Close()

	stories := []*model.StoryWithRating{}
	for rows.Next() {
		s := &model.StoryWithRating{}
		err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Content, &s.CoverImage, &s.AuthorID,
			&s.IsPremium, &s.IsPublished, &s.IsShortStory, &s.CreatedAt, &s.UpdatedAt,
			&s.AverageRating,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan top rated story: %w", err)
		}
		stories = append(stories, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return stories, nil
}

func (r *Repository) GetAuthorStories(ctx context.Context, authorID int) ([]*model.Story, error) {
	// Drafts included: this serves the author's own dashboard.
	query := `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.collectStories(ctx, query, authorID)
}

func (r *Repository) CreateStory(ctx context.Context, ns model.NewStory) (*model.Story, error) {
	query := `
		INSERT INTO stories (title, description, content, cover_image, author_id,
			is_premium, is_published, is_short_story)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + storyColumns

	s, err := scanStory(r.pool.QueryRow(ctx, query,
		ns.Title, ns.Description, ns.Content, ns.CoverImage, ns.AuthorID,
		ns.IsPremium, ns.IsPublished, ns.IsShortStory,
	))
	if err != nil {
		if terr := translateConstraint(err); terr != err {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	return s, nil
}

func (r *Repository) UpdateStory(ctx context.Context, id int, upd model.StoryUpdate) (*model.Story, error) {
	// updated_at is refreshed unconditionally, even for a no-op call.
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	argIndex := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if upd.Title != nil {
		addSet("title", *upd.Title)
	}
	if upd.Description != nil {
		addSet("description", *upd.Description)
	}
	if upd.Content != nil {
		addSet("content", *upd.Content)
	}
	if upd.CoverImage != nil {
		addSet("cover_image", *upd.CoverImage)
	}
	if upd.IsPremium != nil {
		addSet("is_premium", *upd.IsPremium)
	}
	if upd.IsPublished != nil {
		addSet("is_published", *upd.IsPublished)
	}
	if upd.IsShortStory != nil {
		addSet("is_short_story", *upd.IsShortStory)
	}

	query := fmt.Sprintf(
		`UPDATE stories SET %s WHERE id = $1 RETURNING `+storyColumns,
		strings.Join(sets, ", "),
	)

	// scanStory already wraps failures with context; no second wrap.
	return scanStory(r.pool.QueryRow(ctx, query, args...))
}

func (r *Repository) DeleteStory(ctx context.Context, id int) (bool, error) {
	// Dependents are removed before the story row, FK order, inside one
	// transaction so a mid-cascade failure cannot orphan anything.
	existed := false
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM story_genres WHERE story_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete story genres: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM ratings WHERE story_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete ratings: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bookmarks WHERE story_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete bookmarks: %w", err)
		}
		result, err := tx.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete story: %w", err)
		}
		existed = result.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (r *Repository) CountAuthorStories(ctx context.Context, authorID int, isShortStory bool) (int, error) {
	// No publish filter: the free-tier gate must count drafts too.
	query := `SELECT COUNT(*) FROM stories WHERE author_id = $1 AND is_short_story = $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, authorID, isShortStory).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count author stories: %w", err)
	}
	return count, nil
}

func (r *Repository) CountStories(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return count, nil
}
