package model

import "time"

// ========================================
// CORE ENTITIES
// ========================================

// User is a registered account. Password always holds a bcrypt hash,
// never plaintext.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	IsPremium bool      `json:"is_premium"`
	IsAuthor  bool      `json:"is_author"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Story is a published or draft work (novel, short story, or comic).
type Story struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Content      string    `json:"content"`
	CoverImage   *string   `json:"cover_image"`
	AuthorID     int       `json:"author_id"`
	IsPremium    bool      `json:"is_premium"`
	IsPublished  bool      `json:"is_published"`
	IsShortStory bool      `json:"is_short_story"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Genre is catalog reference data. Creation is supported, removal is not.
type Genre struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// StoryGenre links a story to a genre. The pair is the whole fact.
type StoryGenre struct {
	StoryID int `json:"story_id"`
	GenreID int `json:"genre_id"`
}

// Rating is one user's review of one story. At most one per
// (user, story) pair; the storage layer enforces this.
type Rating struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	StoryID   int       `json:"story_id"`
	Rating    int       `json:"rating"`
	Review    *string   `json:"review"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark marks a story saved by a user. One per (user, story) pair.
type Bookmark struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	StoryID   int       `json:"story_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ========================================
// READ PROJECTIONS
// ========================================

// RatingUser is the partial user projection attached to ratings for
// display purposes.
type RatingUser struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// RatingWithUser enriches a rating with its author's display fields.
type RatingWithUser struct {
	Rating
	User RatingUser `json:"user"`
}

// StoryWithRating annotates a story with its computed average rating.
// Stories with no ratings carry 0.
type StoryWithRating struct {
	Story
	AverageRating float64 `json:"average_rating"`
}

// ========================================
// WRITE CARRIERS
// ========================================

// NewUser carries the fields of a user being created. The storage layer
// assigns the ID and the timestamp.
type NewUser struct {
	Username  string
	Password  string
	Email     string
	FullName  *string
	Bio       *string
	AvatarURL *string
	IsPremium bool
	IsAuthor  bool
	IsAdmin   bool
}

// UserUpdate is a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Password  *string
	Email     *string
	FullName  *string
	Bio       *string
	AvatarURL *string
	IsPremium *bool
	IsAuthor  *bool
}

// NewStory carries the fields of a story being created.
type NewStory struct {
	Title        string
	Description  string
	Content      string
	CoverImage   *string
	AuthorID     int
	IsPremium    bool
	IsPublished  bool
	IsShortStory bool
}

// StoryUpdate is a partial update. UpdatedAt is refreshed on every call
// regardless of which fields are set.
type StoryUpdate struct {
	Title        *string
	Description  *string
	Content      *string
	CoverImage   *string
	IsPremium    *bool
	IsPublished  *bool
	IsShortStory *bool
}

// NewGenre carries the fields of a genre being created.
type NewGenre struct {
	Name        string
	Description *string
	Icon        *string
}

// NewRating carries the fields of a rating being created.
type NewRating struct {
	UserID  int
	StoryID int
	Rating  int
	Review  *string
}
