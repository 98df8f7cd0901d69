// Package memory implements the storage contract over in-process maps.
// It is the default backend and the reference for contract behavior.
package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/storage"
)

// Store keeps one map per entity plus monotonically increasing counters
// used as identity generators. Counters are never reused, even after
// deletes.
//
// A single RWMutex guards every operation. Compound operations
// (create-with-counter, cascade delete) hold the write lock end to end,
// so the store is safe under Go's parallel request handling.
type Store struct {
	mu sync.RWMutex

	users       map[int]*model.User
	stories     map[int]*model.Story
	genres      map[int]*model.Genre
	storyGenres []model.StoryGenre
	ratings     map[int]*model.Rating
	bookmarks   map[int]*model.Bookmark

	nextUserID     int
	nextStoryID    int
	nextGenreID    int
	nextRatingID   int
	nextBookmarkID int

	now func() time.Time
	rng *rand.Rand
}

var _ storage.Storage = (*Store)(nil)

// New builds a store seeded with the default genres and the bootstrap
// admin account. Each call returns an independent instance, so tests can
// run isolated stores side by side.
func New() (*Store, error) {
	s := &Store{
		users:          make(map[int]*model.User),
		stories:        make(map[int]*model.Story),
		genres:         make(map[int]*model.Genre),
		ratings:        make(map[int]*model.Rating),
		bookmarks:      make(map[int]*model.Bookmark),
		nextUserID:     1,
		nextStoryID:    1,
		nextGenreID:    1,
		nextRatingID:   1,
		nextBookmarkID: 1,
		now:            time.Now,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.seed(); err != nil {
		return nil, fmt.Errorf("failed to seed memory store: %w", err)
	}
	return s, nil
}

func (s *Store) seed() error {
	for _, g := range storage.DefaultGenres() {
		genre := &model.Genre{
			ID:          s.nextGenreID,
			Name:        g.Name,
			Description: g.Description,
			Icon:        g.Icon,
		}
		s.genres[genre.ID] = genre
		s.nextGenreID++
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(storage.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{
		ID:        s.nextUserID,
		Username:  storage.SeedAdminUsername,
		Password:  string(hash),
		Email:     storage.SeedAdminEmail,
		IsAdmin:   true,
		CreatedAt: s.now().UTC(),
	}
	s.users[admin.ID] = admin
	s.nextUserID++
	return nil
}

// ========================================
// USERS
// ========================================

func (s *Store) GetUser(ctx context.Context, id int) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.users[id]), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, nu.Username) {
			return nil, model.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, nu.Email) {
			return nil, model.ErrEmailTaken
		}
	}

	u := &model.User{
		ID:        s.nextUserID,
		Username:  nu.Username,
		Password:  nu.Password,
		Email:     nu.Email,
		FullName:  nu.FullName,
		Bio:       nu.Bio,
		AvatarURL: nu.AvatarURL,
		IsPremium: nu.IsPremium,
		IsAuthor:  nu.IsAuthor,
		IsAdmin:   nu.IsAdmin,
		CreatedAt: s.now().UTC(),
	}
	s.users[u.ID] = u
	s.nextUserID++
	return copyUser(u), nil
}

func (s *Store) UpdateUser(ctx context.Context, id int, upd model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}

	if upd.Email != nil {
		for _, other := range s.users {
			if other.ID != id && strings.EqualFold(other.Email, *upd.Email) {
				return nil, model.ErrEmailTaken
			}
		}
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	// Pointed-to values are copied so the map entry never aliases caller
	// memory.
	if upd.FullName != nil {
		v := *upd.FullName
		u.FullName = &v
	}
	if upd.Bio != nil {
		v := *upd.Bio
		u.Bio = &v
	}
	if upd.AvatarURL != nil {
		v := *upd.AvatarURL
		u.AvatarURL = &v
	}
	if upd.IsPremium != nil {
		u.IsPremium = *upd.IsPremium
	}
	if upd.IsAuthor != nil {
		u.IsAuthor = *upd.IsAuthor
	}
	return copyUser(u), nil
}

// ========================================
// STORIES
// ========================================

func (s *Store) GetStory(ctx context.Context, id int) (*model.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStory(s.stories[id]), nil
}

func (s *Store) GetStories(ctx context.Context, f storage.StoryFilter) ([]*model.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Genre filter resolves the story-id set through the join entity
	// first, then intersects with the rest.
	var genreSet map[int]bool
	if f.GenreID != nil {
		genreSet = make(map[int]bool)
		for _, sg := range s.storyGenres {
			if sg.GenreID == *f.GenreID {
				genreSet[sg.StoryID] = true
			}
		}
	}

	var matched []*model.Story
	for _, st := range s.stories {
		if !st.IsPublished {
			continue
		}
		if f.AuthorID != nil && st.AuthorID != *f.AuthorID {
			continue
		}
		if f.IsPremium != nil && st.IsPremium != *f.IsPremium {
			continue
		}
		if f.IsShortStory != nil && st.IsShortStory != *f.IsShortStory {
			continue
		}
		if genreSet != nil && !genreSet[st.ID] {
			continue
		}
		matched = append(matched, st)
	}

	sortNewestFirst(matched)

	limit := f.Limit
	if limit <= 0 {
		limit = storage.DefaultStoryLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []*model.Story{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return copyStories(matched), nil
}

func (s *Store) GetFeaturedStories(ctx context.Context, limit int) ([]*model.Story, error) {
	if limit <= 0 {
		limit = storage.DefaultStoryLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var published []*model.Story
	for _, st := range s.stories {
		if st.IsPublished {
			published = append(published, st)
		}
	}
	s.rng.Shuffle(len(published), func(i, j int) {
		published[i], published[j] = published[j], published[i]
	})
	if len(published) > limit {
		published = published[:limit]
	}
	return copyStories(published), nil
}

func (s *Store) GetTopRatedStories(ctx context.Context, limit int) ([]*model.StoryWithRating, error) {
	if limit <= 0 {
		limit = storage.DefaultStoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, r := range s.ratings {
		sums[r.StoryID] += r.Rating
		counts[r.StoryID]++
	}

	var rated []*model.StoryWithRating
	for _, st := range s.stories {
		if !st.IsPublished {
			continue
		}
		avg := 0.0
		if counts[st.ID] > 0 {
			avg = float64(sums[st.ID]) / float64(counts[st.ID])
		}
		rated = append(rated, &model.StoryWithRating{Story: *st, AverageRating: avg})
	}

	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].AverageRating != rated[j].AverageRating {
			return rated[i].AverageRating > rated[j].AverageRating
		}
		if !rated[i].CreatedAt.Equal(rated[j].CreatedAt) {
			return rated[i].CreatedAt.After(rated[j].CreatedAt)
		}
		return rated[i].ID > rated[j].ID
	})
	if len(rated) > limit {
		rated = rated[:limit]
	}
	return rated, nil
}

func (s *Store) GetAuthorStories(ctx context.Context, authorID int) ([]*model.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*model.Story
	for _, st := range s.stories {
		if st.AuthorID == authorID {
			matched = append(matched, st)
		}
	}
	sortNewestFirst(matched)
	return copyStories(matched), nil
}

func (s *Store) CreateStory(ctx context.Context, ns model.NewStory) (*model.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	st := &model.Story{
		ID:           s.nextStoryID,
		Title:        ns.Title,
		Description:  ns.Description,
		Content:      ns.Content,
		CoverImage:   ns.CoverImage,
		AuthorID:     ns.AuthorID,
		IsPremium:    ns.IsPremium,
		IsPublished:  ns.IsPublished,
		IsShortStory: ns.IsShortStory,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.stories[st.ID] = st
	s.nextStoryID++
	return copyStory(st), nil
}

func (s *Store) UpdateStory(ctx context.Context, id int, upd model.StoryUpdate) (*model.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stories[id]
	if !ok {
		return nil, nil
	}

	if upd.Title != nil {
		st.Title = *upd.Title
	}
	if upd.Description != nil {
		st.Description = *upd.Description
	}
	if upd.Content != nil {
		st.Content = *upd.Content
	}
	if upd.CoverImage != nil {
		v := *upd.CoverImage
		st.CoverImage = &v
	}
	if upd.IsPremium != nil {
		st.IsPremium = *upd.IsPremium
	}
	if upd.IsPublished != nil {
		st.IsPublished = *upd.IsPublished
	}
	if upd.IsShortStory != nil {
		st.IsShortStory = *upd.IsShortStory
	}
	// Touched unconditionally, even for a no-op update.
	st.UpdatedAt = s.now().UTC()
	return copyStory(st), nil
}

func (s *Store) DeleteStory(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stories[id]; !ok {
		return false, nil
	}

	// Dependents go first, mirroring the FK-ordered deletes in the SQL
	// backend.
	kept := s.storyGenres[:0]
	for _, sg := range s.storyGenres {
		if sg.StoryID != id {
			kept = append(kept, sg)
		}
	}
	s.storyGenres = kept

	for rid, r := range s.ratings {
		if r.StoryID == id {
			delete(s.ratings, rid)
		}
	}
	for bid, b := range s.bookmarks {
		if b.StoryID == id {
			delete(s.bookmarks, bid)
		}
	}
	delete(s.stories, id)
	return true, nil
}

func (s *Store) CountAuthorStories(ctx context.Context, authorID int, isShortStory bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, st := range s.stories {
		if st.AuthorID == authorID && st.IsShortStory == isShortStory {
			count++
		}
	}
	return count, nil
}

// ========================================
// GENRES
// ========================================

func (s *Store) GetGenres(ctx context.Context) ([]*model.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genres := make([]*model.Genre, 0, len(s.genres))
	for _, g := range s.genres {
		genres = append(genres, copyGenre(g))
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	return genres, nil
}

func (s *Store) GetGenre(ctx context.Context, id int) (*model.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyGenre(s.genres[id]), nil
}

func (s *Store) CreateGenre(ctx context.Context, ng model.NewGenre) (*model.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &model.Genre{
		ID:          s.nextGenreID,
		Name:        ng.Name,
		Description: ng.Description,
		Icon:        ng.Icon,
	}
	s.genres[g.ID] = g
	s.nextGenreID++
	return copyGenre(g), nil
}

func (s *Store) GetStoryGenres(ctx context.Context, storyID int) ([]*model.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genres := []*model.Genre{}
	for _, sg := range s.storyGenres {
		if sg.StoryID != storyID {
			continue
		}
		if g, ok := s.genres[sg.GenreID]; ok {
			genres = append(genres, copyGenre(g))
		}
	}
	return genres, nil
}

func (s *Store) AddStoryGenre(ctx context.Context, storyID, genreID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sg := range s.storyGenres {
		if sg.StoryID == storyID && sg.GenreID == genreID {
			return model.ErrDuplicateStoryGenre
		}
	}
	s.storyGenres = append(s.storyGenres, model.StoryGenre{StoryID: storyID, GenreID: genreID})
	return nil
}

// ========================================
// RATINGS
// ========================================

func (s *Store) GetRating(ctx context.Context, userID, storyID int) (*model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.ratings {
		if r.UserID == userID && r.StoryID == storyID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetRatings(ctx context.Context, storyID int) ([]*model.RatingWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*model.RatingWithUser{}
	for _, r := range s.ratings {
		if r.StoryID != storyID {
			continue
		}
		rw := &model.RatingWithUser{Rating: *r}
		if u, ok := s.users[r.UserID]; ok {
			rw.User = model.RatingUser{
				ID:        u.ID,
				Username:  u.Username,
				FullName:  u.FullName,
				AvatarURL: u.AvatarURL,
			}
		}
		results = append(results, rw)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (s *Store) CreateRating(ctx context.Context, nr model.NewRating) (*model.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.ratings {
		if r.UserID == nr.UserID && r.StoryID == nr.StoryID {
			return nil, model.ErrAlreadyRated
		}
	}

	r := &model.Rating{
		ID:        s.nextRatingID,
		UserID:    nr.UserID,
		StoryID:   nr.StoryID,
		Rating:    nr.Rating,
		Review:    nr.Review,
		CreatedAt: s.now().UTC(),
	}
	s.ratings[r.ID] = r
	s.nextRatingID++
	cp := *r
	return &cp, nil
}

func (s *Store) GetAverageRating(ctx context.Context, storyID int) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, count := 0, 0
	for _, r := range s.ratings {
		if r.StoryID == storyID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}

// ========================================
// BOOKMARKS
// ========================================

func (s *Store) GetBookmark(ctx context.Context, userID, storyID int) (*model.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bookmarks {
		if b.UserID == userID && b.StoryID == storyID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetBookmarks(ctx context.Context, userID int) ([]*model.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookmarks []*model.Bookmark
	for _, b := range s.bookmarks {
		if b.UserID == userID {
			bookmarks = append(bookmarks, b)
		}
	}
	sort.Slice(bookmarks, func(i, j int) bool { return bookmarks[i].ID > bookmarks[j].ID })

	stories := []*model.Story{}
	for _, b := range bookmarks {
		if st, ok := s.stories[b.StoryID]; ok {
			stories = append(stories, copyStory(st))
		}
	}
	return stories, nil
}

func (s *Store) CreateBookmark(ctx context.Context, userID, storyID int) (*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookmarks {
		if b.UserID == userID && b.StoryID == storyID {
			return nil, model.ErrAlreadyBookmarked
		}
	}

	b := &model.Bookmark{
		ID:        s.nextBookmarkID,
		UserID:    userID,
		StoryID:   storyID,
		CreatedAt: s.now().UTC(),
	}
	s.bookmarks[b.ID] = b
	s.nextBookmarkID++
	cp := *b
	return &cp, nil
}

func (s *Store) DeleteBookmark(ctx context.Context, userID, storyID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for bid, b := range s.bookmarks {
		if b.UserID == userID && b.StoryID == storyID {
			delete(s.bookmarks, bid)
			return true, nil
		}
	}
	return false, nil
}

// ========================================
// ADMIN AGGREGATES
// ========================================

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *Store) CountSubscribers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, u := range s.users {
		if u.IsPremium {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountStories(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stories), nil
}

// ========================================
// HELPERS
// ========================================

// sortNewestFirst orders by CreatedAt descending, falling back to ID
// descending so pagination stays stable when timestamps collide.
func sortNewestFirst(stories []*model.Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		if !stories[i].CreatedAt.Equal(stories[j].CreatedAt) {
			return stories[i].CreatedAt.After(stories[j].CreatedAt)
		}
		return stories[i].ID > stories[j].ID
	})
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func copyStory(st *model.Story) *model.Story {
	if st == nil {
		return nil
	}
	cp := *st
	return &cp
}

func copyStories(stories []*model.Story) []*model.Story {
	out := make([]*model.Story, len(stories))
	for i, st := range stories {
		out[i] = copyStory(st)
	}
	return out
}

func copyGenre(g *model.Genre) *model.Genre {
	if g == nil {
		return nil
	}
	cp := *g
	return &cp
}
