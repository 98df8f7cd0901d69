package model

import "errors"

// Storage-level errors. Not-found is never an error at this layer: lookups
// return nil and deletes return false for missing rows. These sentinels
// cover the uniqueness constraints both backends enforce.
var (
	// Conflict
	ErrUsernameTaken       = errors.New("username already taken")
	ErrEmailTaken          = errors.New("email already registered")
	ErrAlreadyRated        = errors.New("story already rated by this user")
	ErrAlreadyBookmarked   = errors.New("story already bookmarked")
	ErrDuplicateStoryGenre = errors.New("story already has this genre")

	// Referenced entity missing on insert (foreign key violation)
	ErrInvalidReference = errors.New("referenced entity does not exist")
)
