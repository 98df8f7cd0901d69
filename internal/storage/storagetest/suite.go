// Package storagetest holds the contract suite both storage backends must
// pass. Backends plug in a factory that returns a freshly seeded, isolated
// store per test.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/storage"
)

// Factory returns a clean store seeded only with the default genres and
// the admin account.
type Factory func(t *testing.T) storage.Storage

// Run executes the full contract suite against the given backend.
func Run(t *testing.T, factory Factory) {
	t.Run("UserLookupIsCaseInsensitive", func(t *testing.T) { testUserLookupCaseInsensitive(t, factory) })
	t.Run("UserUniqueness", func(t *testing.T) { testUserUniqueness(t, factory) })
	t.Run("UserPartialUpdate", func(t *testing.T) { testUserPartialUpdate(t, factory) })
	t.Run("UserUpdateMissing", func(t *testing.T) { testUserUpdateMissing(t, factory) })
	t.Run("PublishVisibility", func(t *testing.T) { testPublishVisibility(t, factory) })
	t.Run("StoryFilters", func(t *testing.T) { testStoryFilters(t, factory) })
	t.Run("PaginationPartitions", func(t *testing.T) { testPaginationPartitions(t, factory) })
	t.Run("FeaturedStories", func(t *testing.T) { testFeaturedStories(t, factory) })
	t.Run("NonPositiveLimits", func(t *testing.T) { testNonPositiveLimits(t, factory) })
	t.Run("TopRatedOrdering", func(t *testing.T) { testTopRatedOrdering(t, factory) })
	t.Run("UpdateStoryTouchesTimestamp", func(t *testing.T) { testUpdateStoryTouchesTimestamp(t, factory) })
	t.Run("CascadeDelete", func(t *testing.T) { testCascadeDelete(t, factory) })
	t.Run("IdempotentDelete", func(t *testing.T) { testIdempotentDelete(t, factory) })
	t.Run("IDsNeverReused", func(t *testing.T) { testIDsNeverReused(t, factory) })
	t.Run("CountAuthorStoriesSeesDrafts", func(t *testing.T) { testCountAuthorStories(t, factory) })
	t.Run("GenreSeedAndJoin", func(t *testing.T) { testGenreSeedAndJoin(t, factory) })
	t.Run("DuplicateStoryGenre", func(t *testing.T) { testDuplicateStoryGenre(t, factory) })
	t.Run("AverageRating", func(t *testing.T) { testAverageRating(t, factory) })
	t.Run("RatingsWithUserProjection", func(t *testing.T) { testRatingsProjection(t, factory) })
	t.Run("DuplicateRating", func(t *testing.T) { testDuplicateRating(t, factory) })
	t.Run("Bookmarks", func(t *testing.T) { testBookmarks(t, factory) })
	t.Run("AdminCounts", func(t *testing.T) { testAdminCounts(t, factory) })
}

// ========================================
// HELPERS
// ========================================

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func mustCreateUser(t *testing.T, s storage.Storage, username string) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.NewUser{
		Username: username,
		Password: "hashed-password",
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func mustCreateStory(t *testing.T, s storage.Storage, ns model.NewStory) *model.Story {
	t.Helper()
	st, err := s.CreateStory(context.Background(), ns)
	require.NoError(t, err)
	require.NotNil(t, st)
	return st
}

func publishedStory(authorID int, title string) model.NewStory {
	return model.NewStory{
		Title:       title,
		Description: "a story",
		Content:     "once upon a time",
		AuthorID:    authorID,
		IsPublished: true,
	}
}

func storyIDs(stories []*model.Story) []int {
	ids := make([]int, len(stories))
	for i, st := range stories {
		ids[i] = st.ID
	}
	return ids
}

// ========================================
// USERS
// ========================================

func testUserLookupCaseInsensitive(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	created := mustCreateUser(t, s, "Alice")

	for _, probe := range []string{"alice", "ALICE", "Alice", "aLiCe"} {
		u, err := s.GetUserByUsername(ctx, probe)
		require.NoError(t, err)
		require.NotNil(t, u, "lookup %q should find the user", probe)
		assert.Equal(t, created.ID, u.ID)
	}

	u, err := s.GetUserByEmail(ctx, "ALICE@EXAMPLE.COM")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, created.ID, u.ID)

	missing, err := s.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testUserUniqueness(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	mustCreateUser(t, s, "bob")

	_, err := s.CreateUser(ctx, model.NewUser{
		Username: "BOB",
		Password: "x",
		Email:    "other@example.com",
	})
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	_, err = s.CreateUser(ctx, model.NewUser{
		Username: "bob2",
		Password: "x",
		Email:    "Bob@Example.com",
	})
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func testUserPartialUpdate(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, model.NewUser{
		Username: "carol",
		Password: "x",
		Email:    "carol@example.com",
		FullName: strPtr("Carol C"),
		Bio:      strPtr("writer"),
	})
	require.NoError(t, err)

	updated, err := s.UpdateUser(ctx, u.ID, model.UserUpdate{
		Bio:       strPtr("novelist"),
		IsPremium: boolPtr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	// Omitted fields keep their values.
	require.NotNil(t, updated.FullName)
	assert.Equal(t, "Carol C", *updated.FullName)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "novelist", *updated.Bio)
	assert.True(t, updated.IsPremium)
	assert.Equal(t, "carol@example.com", updated.Email)
}

func testUserUpdateMissing(t *testing.T, factory Factory) {
	s := factory(t)

	updated, err := s.UpdateUser(context.Background(), 99999, model.UserUpdate{Bio: strPtr("x")})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

// ========================================
// STORIES
// ========================================

func testPublishVisibility(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "dana")

	draft := mustCreateStory(t, s, model.NewStory{
		Title:    "Draft",
		AuthorID: author.ID,
	})
	published := mustCreateStory(t, s, publishedStory(author.ID, "Published"))

	listed, err := s.GetStories(ctx, storage.StoryFilter{})
	require.NoError(t, err)
	assert.NotContains(t, storyIDs(listed), draft.ID)
	assert.Contains(t, storyIDs(listed), published.ID)

	// Draft stays hidden under every filter combination.
	listed, err = s.GetStories(ctx, storage.StoryFilter{AuthorID: &author.ID})
	require.NoError(t, err)
	assert.NotContains(t, storyIDs(listed), draft.ID)

	// The author dashboard sees everything.
	own, err := s.GetAuthorStories(ctx, author.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{draft.ID, published.ID}, storyIDs(own))
}

func testStoryFilters(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	a := mustCreateUser(t, s, "erin")
	b := mustCreateUser(t, s, "farid")

	premium := mustCreateStory(t, s, model.NewStory{
		Title: "Premium", AuthorID: a.ID, IsPublished: true, IsPremium: true,
	})
	short := mustCreateStory(t, s, model.NewStory{
		Title: "Short", AuthorID: b.ID, IsPublished: true, IsShortStory: true,
	})

	byAuthor, err := s.GetStories(ctx, storage.StoryFilter{AuthorID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, []int{premium.ID}, storyIDs(byAuthor))

	byPremium, err := s.GetStories(ctx, storage.StoryFilter{IsPremium: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []int{premium.ID}, storyIDs(byPremium))

	byShort, err := s.GetStories(ctx, storage.StoryFilter{IsShortStory: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []int{short.ID}, storyIDs(byShort))

	// A genre nobody uses yields an empty sequence, not an error.
	empty, err := s.GetStories(ctx, storage.StoryFilter{GenreID: intPtr(1)})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testPaginationPartitions(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "gaia")

	var created []int
	for i := 0; i < 5; i++ {
		st := mustCreateStory(t, s, publishedStory(author.ID, fmt.Sprintf("Story %d", i)))
		created = append(created, st.ID)
		time.Sleep(2 * time.Millisecond) // distinct created_at ordering
	}

	full, err := s.GetStories(ctx, storage.StoryFilter{AuthorID: &author.ID})
	require.NoError(t, err)
	require.Len(t, full, 5)

	// Newest first.
	assert.Equal(t, created[4], full[0].ID)
	assert.Equal(t, created[0], full[4].ID)

	// Two pages partition the result set: no overlap, no gap.
	page1, err := s.GetStories(ctx, storage.StoryFilter{AuthorID: &author.ID, Limit: 2, Offset: 0})
	require.NoError(t, err)
	page2, err := s.GetStories(ctx, storage.StoryFilter{AuthorID: &author.ID, Limit: 2, Offset: 2})
	require.NoError(t, err)
	page3, err := s.GetStories(ctx, storage.StoryFilter{AuthorID: &author.ID, Limit: 2, Offset: 4})
	require.NoError(t, err)

	var paged []int
	for _, page := range [][]*model.Story{page1, page2, page3} {
		paged = append(paged, storyIDs(page)...)
	}
	assert.Equal(t, storyIDs(full), paged)

	// Offset past the end is empty, not an error.
	beyond, err := s.GetStories(ctx, storage.StoryFilter{AuthorID: &author.ID, Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func testFeaturedStories(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "hassan")
	published := map[int]bool{}
	for i := 0; i < 6; i++ {
		st := mustCreateStory(t, s, publishedStory(author.ID, fmt.Sprintf("Pub %d", i)))
		published[st.ID] = true
	}
	draft := mustCreateStory(t, s, model.NewStory{Title: "Hidden", AuthorID: author.ID})

	featured, err := s.GetFeaturedStories(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, featured, 4)

	seen := map[int]bool{}
	for _, st := range featured {
		assert.True(t, published[st.ID], "featured story %d must be published", st.ID)
		assert.NotEqual(t, draft.ID, st.ID)
		assert.False(t, seen[st.ID], "no duplicates in the sample")
		seen[st.ID] = true
	}
}

func testNonPositiveLimits(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "nolimit")
	for i := 0; i < 3; i++ {
		mustCreateStory(t, s, publishedStory(author.ID, fmt.Sprintf("Open %d", i)))
	}

	// Zero and negative limits fall back to the default, not to nothing.
	for _, limit := range []int{0, -1} {
		featured, err := s.GetFeaturedStories(ctx, limit)
		require.NoError(t, err)
		assert.Len(t, featured, 3, "limit %d", limit)

		top, err := s.GetTopRatedStories(ctx, limit)
		require.NoError(t, err)
		assert.Len(t, top, 3, "limit %d", limit)
	}
}

func testTopRatedOrdering(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "imogen")
	rater1 := mustCreateUser(t, s, "rater1")
	rater2 := mustCreateUser(t, s, "rater2")

	storyA := mustCreateStory(t, s, publishedStory(author.ID, "A"))
	storyB := mustCreateStory(t, s, publishedStory(author.ID, "B"))
	storyC := mustCreateStory(t, s, publishedStory(author.ID, "C"))

	// A averages 4.5, B averages 2, C has no ratings and defaults to 0.
	_, err := s.CreateRating(ctx, model.NewRating{UserID: rater1.ID, StoryID: storyA.ID, Rating: 4})
	require.NoError(t, err)
	_, err = s.CreateRating(ctx, model.NewRating{UserID: rater2.ID, StoryID: storyA.ID, Rating: 5})
	require.NoError(t, err)
	_, err = s.CreateRating(ctx, model.NewRating{UserID: rater1.ID, StoryID: storyB.ID, Rating: 2})
	require.NoError(t, err)

	top, err := s.GetTopRatedStories(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, storyA.ID, top[0].ID)
	assert.InDelta(t, 4.5, top[0].AverageRating, 0.001)
	assert.Equal(t, storyB.ID, top[1].ID)
	assert.InDelta(t, 2.0, top[1].AverageRating, 0.001)
	assert.Equal(t, storyC.ID, top[2].ID)
	assert.Zero(t, top[2].AverageRating)
}

func testUpdateStoryTouchesTimestamp(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "jonas")
	st := mustCreateStory(t, s, publishedStory(author.ID, "Original"))

	time.Sleep(5 * time.Millisecond)

	// Even a field-free update refreshes updated_at.
	updated, err := s.UpdateStory(ctx, st.ID, model.StoryUpdate{})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.UpdatedAt.After(st.UpdatedAt),
		"updated_at %v should advance past %v", updated.UpdatedAt, st.UpdatedAt)
	assert.Equal(t, "Original", updated.Title)

	time.Sleep(5 * time.Millisecond)

	renamed, err := s.UpdateStory(ctx, st.ID, model.StoryUpdate{Title: strPtr("Renamed")})
	require.NoError(t, err)
	require.NotNil(t, renamed)
	assert.Equal(t, "Renamed", renamed.Title)
	assert.True(t, renamed.UpdatedAt.After(updated.UpdatedAt))

	missing, err := s.UpdateStory(ctx, 99999, model.StoryUpdate{Title: strPtr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testCascadeDelete(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "karim")
	reader := mustCreateUser(t, s, "leila")

	st := mustCreateStory(t, s, publishedStory(author.ID, "Doomed"))

	genres, err := s.GetGenres(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, genres)
	require.NoError(t, s.AddStoryGenre(ctx, st.ID, genres[0].ID))

	_, err = s.CreateRating(ctx, model.NewRating{UserID: reader.ID, StoryID: st.ID, Rating: 5})
	require.NoError(t, err)
	_, err = s.CreateBookmark(ctx, reader.ID, st.ID)
	require.NoError(t, err)

	deleted, err := s.DeleteStory(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := s.GetStory(ctx, st.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	ratings, err := s.GetRatings(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, ratings)

	storyGenres, err := s.GetStoryGenres(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, storyGenres)

	bookmarks, err := s.GetBookmarks(ctx, reader.ID)
	require.NoError(t, err)
	assert.NotContains(t, storyIDs(bookmarks), st.ID)
}

func testIdempotentDelete(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "mona")
	st := mustCreateStory(t, s, publishedStory(author.ID, "Once"))

	deleted, err := s.DeleteStory(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	again, err := s.DeleteStory(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, again, "second delete reports absence, not failure")

	never, err := s.DeleteStory(ctx, 99999)
	require.NoError(t, err)
	assert.False(t, never)
}

func testIDsNeverReused(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "nadia")

	first := mustCreateStory(t, s, publishedStory(author.ID, "First"))
	_, err := s.DeleteStory(ctx, first.ID)
	require.NoError(t, err)

	second := mustCreateStory(t, s, publishedStory(author.ID, "Second"))
	assert.Greater(t, second.ID, first.ID, "a deleted id is never handed out again")
}

func testCountAuthorStories(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "omar")

	// One draft and one published novel: the gate counts both.
	mustCreateStory(t, s, model.NewStory{Title: "Draft Novel", AuthorID: author.ID})
	mustCreateStory(t, s, publishedStory(author.ID, "Published Novel"))
	mustCreateStory(t, s, model.NewStory{Title: "Short", AuthorID: author.ID, IsShortStory: true, IsPublished: true})

	novels, err := s.CountAuthorStories(ctx, author.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, novels)

	shorts, err := s.CountAuthorStories(ctx, author.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, shorts)
}

// ========================================
// GENRES
// ========================================

func testGenreSeedAndJoin(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	genres, err := s.GetGenres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 6)

	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	assert.ElementsMatch(t,
		[]string{"Fantasy", "Romance", "Mystery", "Science Fiction", "Horror", "Adventure"},
		names)

	var fantasy *model.Genre
	for _, g := range genres {
		if g.Name == "Fantasy" {
			fantasy = g
		}
	}
	require.NotNil(t, fantasy)

	author := mustCreateUser(t, s, "pia")
	st := mustCreateStory(t, s, model.NewStory{Title: "Saga", AuthorID: author.ID})

	// No genre rows yet: empty, never nil entries.
	linked, err := s.GetStoryGenres(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, linked)

	require.NoError(t, s.AddStoryGenre(ctx, st.ID, fantasy.ID))

	linked, err = s.GetStoryGenres(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "Fantasy", linked[0].Name)

	// Invisible in the genre listing while a draft, visible once published.
	byGenre, err := s.GetStories(ctx, storage.StoryFilter{GenreID: &fantasy.ID})
	require.NoError(t, err)
	assert.Empty(t, byGenre)

	_, err = s.UpdateStory(ctx, st.ID, model.StoryUpdate{IsPublished: boolPtr(true)})
	require.NoError(t, err)

	byGenre, err = s.GetStories(ctx, storage.StoryFilter{GenreID: &fantasy.ID})
	require.NoError(t, err)
	assert.Equal(t, []int{st.ID}, storyIDs(byGenre))
}

func testDuplicateStoryGenre(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "quentin")
	st := mustCreateStory(t, s, publishedStory(author.ID, "Tagged"))

	genres, err := s.GetGenres(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, genres)

	require.NoError(t, s.AddStoryGenre(ctx, st.ID, genres[0].ID))
	err = s.AddStoryGenre(ctx, st.ID, genres[0].ID)
	assert.ErrorIs(t, err, model.ErrDuplicateStoryGenre)
}

// ========================================
// RATINGS
// ========================================

func testAverageRating(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "rami")
	r1 := mustCreateUser(t, s, "reader1")
	r2 := mustCreateUser(t, s, "reader2")
	st := mustCreateStory(t, s, publishedStory(author.ID, "Rated"))

	// Zero ratings average 0, not NaN.
	avg, err := s.GetAverageRating(ctx, st.ID)
	require.NoError(t, err)
	assert.Zero(t, avg)

	_, err = s.CreateRating(ctx, model.NewRating{UserID: r1.ID, StoryID: st.ID, Rating: 3})
	require.NoError(t, err)
	_, err = s.CreateRating(ctx, model.NewRating{UserID: r2.ID, StoryID: st.ID, Rating: 5})
	require.NoError(t, err)

	avg, err = s.GetAverageRating(ctx, st.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 0.001)
}

func testRatingsProjection(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "sana")
	reader, err := s.CreateUser(ctx, model.NewUser{
		Username:  "tarek",
		Password:  "x",
		Email:     "tarek@example.com",
		FullName:  strPtr("Tarek T"),
		AvatarURL: strPtr("https://cdn.example.com/tarek.png"),
	})
	require.NoError(t, err)

	st := mustCreateStory(t, s, publishedStory(author.ID, "Reviewed"))

	_, err = s.CreateRating(ctx, model.NewRating{
		UserID: reader.ID, StoryID: st.ID, Rating: 4, Review: strPtr("loved it"),
	})
	require.NoError(t, err)

	ratings, err := s.GetRatings(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)

	rw := ratings[0]
	assert.Equal(t, 4, rw.Rating.Rating)
	require.NotNil(t, rw.Review)
	assert.Equal(t, "loved it", *rw.Review)
	assert.Equal(t, reader.ID, rw.User.ID)
	assert.Equal(t, "tarek", rw.User.Username)
	require.NotNil(t, rw.User.FullName)
	assert.Equal(t, "Tarek T", *rw.User.FullName)
	require.NotNil(t, rw.User.AvatarURL)

	single, err := s.GetRating(ctx, reader.ID, st.ID)
	require.NoError(t, err)
	require.NotNil(t, single)
	assert.Equal(t, 4, single.Rating)

	none, err := s.GetRating(ctx, author.ID, st.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testDuplicateRating(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "uma")
	reader := mustCreateUser(t, s, "viktor")
	st := mustCreateStory(t, s, publishedStory(author.ID, "Once Rated"))

	_, err := s.CreateRating(ctx, model.NewRating{UserID: reader.ID, StoryID: st.ID, Rating: 5})
	require.NoError(t, err)

	_, err = s.CreateRating(ctx, model.NewRating{UserID: reader.ID, StoryID: st.ID, Rating: 1})
	assert.ErrorIs(t, err, model.ErrAlreadyRated)
}

// ========================================
// BOOKMARKS
// ========================================

func testBookmarks(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, "wafa")
	reader := mustCreateUser(t, s, "xenia")

	st1 := mustCreateStory(t, s, publishedStory(author.ID, "Saved 1"))
	st2 := mustCreateStory(t, s, publishedStory(author.ID, "Saved 2"))

	_, err := s.CreateBookmark(ctx, reader.ID, st1.ID)
	require.NoError(t, err)
	_, err = s.CreateBookmark(ctx, reader.ID, st2.ID)
	require.NoError(t, err)

	_, err = s.CreateBookmark(ctx, reader.ID, st1.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyBookmarked)

	// Returns the stories themselves, not join rows.
	saved, err := s.GetBookmarks(ctx, reader.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{st1.ID, st2.ID}, storyIDs(saved))

	bm, err := s.GetBookmark(ctx, reader.ID, st1.ID)
	require.NoError(t, err)
	require.NotNil(t, bm)
	assert.Equal(t, st1.ID, bm.StoryID)

	deleted, err := s.DeleteBookmark(ctx, reader.ID, st1.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	again, err := s.DeleteBookmark(ctx, reader.ID, st1.ID)
	require.NoError(t, err)
	assert.False(t, again)

	saved, err = s.GetBookmarks(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{st2.ID}, storyIDs(saved))
}

// ========================================
// ADMIN AGGREGATES
// ========================================

func testAdminCounts(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	usersBefore, err := s.CountUsers(ctx)
	require.NoError(t, err)
	subsBefore, err := s.CountSubscribers(ctx)
	require.NoError(t, err)
	storiesBefore, err := s.CountStories(ctx)
	require.NoError(t, err)

	free := mustCreateUser(t, s, "yousef")
	_, err = s.CreateUser(ctx, model.NewUser{
		Username:  "zahra",
		Password:  "x",
		Email:     "zahra@example.com",
		IsPremium: true,
	})
	require.NoError(t, err)

	// Drafts count toward the story total.
	mustCreateStory(t, s, model.NewStory{Title: "Draft", AuthorID: free.ID})
	mustCreateStory(t, s, publishedStory(free.ID, "Live"))

	users, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, usersBefore+2, users)

	subs, err := s.CountSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, subsBefore+1, subs)

	stories, err := s.CountStories(ctx)
	require.NoError(t, err)
	assert.Equal(t, storiesBefore+2, stories)
}
