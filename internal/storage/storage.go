package storage

import (
	"context"

	"hekayaty-backend/internal/model"
)

// DefaultStoryLimit caps GetStories when the caller does not supply a
// limit. Callers must not assume an unbounded default.
const DefaultStoryLimit = 100

// StoryFilter narrows GetStories. Nil fields mean "no constraint".
// Publish status is not a filter: GetStories only ever returns published
// stories.
type StoryFilter struct {
	AuthorID     *int
	GenreID      *int
	IsPremium    *bool
	IsShortStory *bool
	Limit        int // 0 means DefaultStoryLimit
	Offset       int
}

// Storage defines the contract for the story-catalog persistence layer.
// Two implementations exist: an in-memory store (storage/memory) and a
// PostgreSQL store (storage/postgres). They are contract-equivalent and
// verified by the same suite (storage/storagetest).
//
// Conventions:
//   - "Not found" is absence: nil for single lookups, empty slices for
//     lists, false for deletes. Implementations never return an error for
//     a missing entity.
//   - Uniqueness (username, email, and the rating/bookmark/story-genre
//     pairs) is enforced here, surfacing the model sentinel errors
//     identically from both backends.
type Storage interface {
	// ========================================
	// USERS
	// ========================================

	GetUser(ctx context.Context, id int) (*model.User, error)
	// GetUserByUsername matches case-insensitively.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// CreateUser returns ErrUsernameTaken or ErrEmailTaken on a
	// case-insensitive duplicate.
	CreateUser(ctx context.Context, u model.NewUser) (*model.User, error)
	// UpdateUser merges the non-nil fields into the existing record.
	// Returns nil when the id does not exist.
	UpdateUser(ctx context.Context, id int, upd model.UserUpdate) (*model.User, error)

	// ========================================
	// STORIES
	// ========================================

	GetStory(ctx context.Context, id int) (*model.Story, error)
	// GetStories returns published stories only, newest first.
	GetStories(ctx context.Context, f StoryFilter) ([]*model.Story, error)
	// GetFeaturedStories returns a random sample of published stories.
	// No ordering guarantee. A non-positive limit falls back to
	// DefaultStoryLimit.
	GetFeaturedStories(ctx context.Context, limit int) ([]*model.Story, error)
	// GetTopRatedStories returns published stories sorted by average
	// rating descending. Unrated stories average 0 and sort last. A
	// non-positive limit falls back to DefaultStoryLimit.
	GetTopRatedStories(ctx context.Context, limit int) ([]*model.StoryWithRating, error)
	// GetAuthorStories returns all of the author's stories, drafts
	// included, newest first. Serves the author's own dashboard.
	GetAuthorStories(ctx context.Context, authorID int) ([]*model.Story, error)
	CreateStory(ctx context.Context, s model.NewStory) (*model.Story, error)
	// UpdateStory refreshes UpdatedAt even when no field changes.
	UpdateStory(ctx context.Context, id int, upd model.StoryUpdate) (*model.Story, error)
	// DeleteStory removes the story and its genre links, ratings, and
	// bookmarks. Returns whether a story with that id existed.
	DeleteStory(ctx context.Context, id int) (bool, error)
	// CountAuthorStories counts by exact IsShortStory match with no
	// publish filter; the free-tier publish gate must see drafts.
	CountAuthorStories(ctx context.Context, authorID int, isShortStory bool) (int, error)

	// ========================================
	// GENRES
	// ========================================

	GetGenres(ctx context.Context) ([]*model.Genre, error)
	GetGenre(ctx context.Context, id int) (*model.Genre, error)
	CreateGenre(ctx context.Context, g model.NewGenre) (*model.Genre, error)
	// GetStoryGenres returns the genres linked to a story. Empty slice
	// when the story has none (or does not exist).
	GetStoryGenres(ctx context.Context, storyID int) ([]*model.Genre, error)
	// AddStoryGenre returns ErrDuplicateStoryGenre on a repeat pair.
	AddStoryGenre(ctx context.Context, storyID, genreID int) error

	// ========================================
	// RATINGS
	// ========================================

	GetRating(ctx context.Context, userID, storyID int) (*model.Rating, error)
	// GetRatings returns every rating for a story together with a partial
	// user projection for display. Order is unspecified.
	GetRatings(ctx context.Context, storyID int) ([]*model.RatingWithUser, error)
	// CreateRating returns ErrAlreadyRated on a duplicate pair.
	CreateRating(ctx context.Context, r model.NewRating) (*model.Rating, error)
	// GetAverageRating returns the arithmetic mean, or 0 when the story
	// has no ratings. Never NaN.
	GetAverageRating(ctx context.Context, storyID int) (float64, error)

	// ========================================
	// BOOKMARKS
	// ========================================

	GetBookmark(ctx context.Context, userID, storyID int) (*model.Bookmark, error)
	// GetBookmarks returns the bookmarked stories themselves, not the
	// join rows.
	GetBookmarks(ctx context.Context, userID int) ([]*model.Story, error)
	// CreateBookmark returns ErrAlreadyBookmarked on a duplicate pair.
	CreateBookmark(ctx context.Context, userID, storyID int) (*model.Bookmark, error)
	// DeleteBookmark returns whether the bookmark existed.
	DeleteBookmark(ctx context.Context, userID, storyID int) (bool, error)

	// ========================================
	// ADMIN AGGREGATES
	// ========================================

	CountUsers(ctx context.Context) (int, error)
	CountSubscribers(ctx context.Context) (int, error)
	CountStories(ctx context.Context) (int, error)
}
