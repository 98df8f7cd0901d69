package handlers

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(3, 50),
			is.Alphanumeric.Error("username must be alphanumeric"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
		validation.Field(&r.FullName,
			validation.Length(2, 100),
		),
	)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	Email     *string `json:"email"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.When(r.Email != nil, is.Email)),
		validation.Field(&r.FullName, validation.When(r.FullName != nil, validation.Length(2, 100))),
		validation.Field(&r.Bio, validation.When(r.Bio != nil, validation.Length(0, 2000))),
		validation.Field(&r.AvatarURL, validation.When(r.AvatarURL != nil, is.URL)),
	)
}

// ========================================
// STORY DTOs
// ========================================

type CreateStoryRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Content      string  `json:"content"`
	CoverImage   *string `json:"cover_image"`
	IsPremium    bool    `json:"is_premium"`
	IsPublished  bool    `json:"is_published"`
	IsShortStory bool    `json:"is_short_story"`
	GenreIDs     []int   `json:"genre_ids"`
}

func (r CreateStoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.GenreIDs, validation.Each(validation.Min(1))),
	)
}

type UpdateStoryRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Content      *string `json:"content"`
	CoverImage   *string `json:"cover_image"`
	IsPremium    *bool   `json:"is_premium"`
	IsPublished  *bool   `json:"is_published"`
	IsShortStory *bool   `json:"is_short_story"`
}

func (r UpdateStoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.When(r.Title != nil, validation.Length(1, 255))),
		validation.Field(&r.Description, validation.When(r.Description != nil, validation.Length(0, 2000))),
	)
}

// ========================================
// GENRE DTOs
// ========================================

type CreateGenreRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

func (r CreateGenreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 50),
		),
	)
}

type AddStoryGenreRequest struct {
	GenreID int `json:"genre_id"`
}

func (r AddStoryGenreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GenreID, validation.Required, validation.Min(1)),
	)
}

// ========================================
// RATING DTOs
// ========================================

type CreateRatingRequest struct {
	Rating int     `json:"rating"`
	Review *string `json:"review"`
}

func (r CreateRatingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating,
			validation.Required.Error("rating is required"),
			validation.Min(1).Error("rating must be between 1 and 5"),
			validation.Max(5).Error("rating must be between 1 and 5"),
		),
		validation.Field(&r.Review, validation.When(r.Review != nil, validation.Length(0, 5000))),
	)
}

// ========================================
// BOOKMARK DTOs
// ========================================

type CreateBookmarkRequest struct {
	StoryID int `json:"story_id"`
}

func (r CreateBookmarkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StoryID, validation.Required, validation.Min(1)),
	)
}
