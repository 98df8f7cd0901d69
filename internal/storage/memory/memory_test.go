package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/storage"
	"hekayaty-backend/internal/storage/storagetest"
)

func newStore(t *testing.T) storage.Storage {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func TestContract(t *testing.T) {
	storagetest.Run(t, newStore)
}

func TestSeededAdmin(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	admin, err := s.GetUserByUsername(ctx, storage.SeedAdminUsername)
	require.NoError(t, err)
	require.NotNil(t, admin)

	assert.True(t, admin.IsAdmin)
	assert.Equal(t, storage.SeedAdminEmail, admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(admin.Password), []byte(storage.SeedAdminPassword)))
}

func TestInstancesAreIsolated(t *testing.T) {
	a := newStore(t)
	b := newStore(t)
	ctx := context.Background()

	_, err := a.CreateUser(ctx, model.NewUser{
		Username: "solo", Password: "x", Email: "solo@example.com",
	})
	require.NoError(t, err)

	u, err := b.GetUserByUsername(ctx, "solo")
	require.NoError(t, err)
	assert.Nil(t, u, "stores must not share state")
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, model.NewUser{
		Username: "mutable", Password: "x", Email: "mutable@example.com",
	})
	require.NoError(t, err)

	created.Username = "tampered"

	fresh, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, "mutable", fresh.Username)
}

func TestUpdateDoesNotAliasCallerPointers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.NewUser{
		Username: "aliased", Password: "x", Email: "aliased@example.com",
	})
	require.NoError(t, err)

	bio := "original bio"
	_, err = s.UpdateUser(ctx, user.ID, model.UserUpdate{Bio: &bio})
	require.NoError(t, err)

	// Mutating the caller's string must not reach into the store.
	bio = "tampered"

	fresh, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.Bio)
	assert.Equal(t, "original bio", *fresh.Bio)

	story, err := s.CreateStory(ctx, model.NewStory{Title: "Cover", AuthorID: user.ID})
	require.NoError(t, err)

	cover := "https://cdn.example.com/a.png"
	_, err = s.UpdateStory(ctx, story.ID, model.StoryUpdate{CoverImage: &cover})
	require.NoError(t, err)

	cover = "https://cdn.example.com/tampered.png"

	freshStory, err := s.GetStory(ctx, story.ID)
	require.NoError(t, err)
	require.NotNil(t, freshStory.CoverImage)
	assert.Equal(t, "https://cdn.example.com/a.png", *freshStory.CoverImage)
}

func TestConcurrentAccess(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	author, err := s.CreateUser(ctx, model.NewUser{
		Username: "racer", Password: "x", Email: "racer@example.com",
	})
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateStory(ctx, model.NewStory{
				Title:       fmt.Sprintf("Concurrent %d", i),
				AuthorID:    author.ID,
				IsPublished: true,
			})
			assert.NoError(t, err)
			_, err = s.GetStories(ctx, storage.StoryFilter{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stories, err := s.GetAuthorStories(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, stories, workers)

	// Concurrent creates still hand out unique ids.
	seen := map[int]bool{}
	for _, st := range stories {
		assert.False(t, seen[st.ID])
		seen[st.ID] = true
	}
}
