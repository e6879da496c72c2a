package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nik132-eng/roastit/internal/domain"
	"github.com/nik132-eng/roastit/internal/infra/database"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("ROASTIT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL repository test: ROASTIT_TEST_POSTGRES_DSN not set")
	}

	db, err := database.NewPostgres(dsn)
	require.NoError(t, err)
	require.NoError(t, database.MigratePostgres(db))

	t.Cleanup(func() {
		db.Exec("TRUNCATE roasts, posts, users CASCADE")
	})
	return db
}

func seedUser(t *testing.T, users *UserRepository) domain.User {
	t.Helper()
	name := "Alice"
	user, err := users.Upsert(context.Background(), domain.User{
		ID:                "user-" + uuid.NewString(),
		Name:              &name,
		Provider:          "google",
		ProviderAccountID: uuid.NewString(),
	})
	require.NoError(t, err)
	return user
}

func TestRepositories(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	roasts := NewRoastRepository(db)

	alice := seedUser(t, users)

	t.Run("UpsertRefreshesProfile", func(t *testing.T) {
		renamed := "Alice B."
		updated, err := users.Upsert(ctx, domain.User{ID: alice.ID, Name: &renamed, Provider: alice.Provider, ProviderAccountID: alice.ProviderAccountID})
		require.NoError(t, err)
		require.NotNil(t, updated.Name)
		assert.Equal(t, renamed, *updated.Name)
		assert.Equal(t, alice.CreatedAt.Unix(), updated.CreatedAt.Unix())
	})

	var cold, hot domain.Post

	t.Run("CreatePost", func(t *testing.T) {
		var err error
		hot, err = posts.Create(ctx, domain.Post{Title: "hot", ImageURL: "https://cdn.example/uploads/hot.png", ImageKey: "uploads/hot.png", AuthorID: alice.ID})
		require.NoError(t, err)
		assert.NotEmpty(t, hot.ID)
		assert.False(t, hot.CreatedAt.IsZero())

		cold, err = posts.Create(ctx, domain.Post{Title: "cold", ImageURL: "https://cdn.example/cold.png", AuthorID: alice.ID})
		require.NoError(t, err)
	})

	t.Run("CreatePostUnknownAuthor", func(t *testing.T) {
		_, err := posts.Create(ctx, domain.Post{Title: "x", ImageURL: "https://cdn.example/x.png", AuthorID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("CreateRoastUnknownPost", func(t *testing.T) {
		_, err := roasts.Create(ctx, domain.Roast{Text: "meh", PostID: uuid.NewString(), AuthorID: alice.ID})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("TrendingOrder", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := roasts.Create(ctx, domain.Roast{Text: "burn", PostID: hot.ID, AuthorID: alice.ID})
			require.NoError(t, err)
		}
		for i := 0; i < 2; i++ {
			_, err := roasts.Create(ctx, domain.Roast{Text: "warm", PostID: cold.ID, AuthorID: alice.ID})
			require.NoError(t, err)
		}

		feed, err := posts.List(ctx, domain.FeedQuery{Sort: domain.FeedSortTrending, Limit: 10})
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, hot.ID, feed[0].ID)
		assert.EqualValues(t, 5, *feed[0].RoastCount)
		require.NotNil(t, feed[0].Author)
		assert.Equal(t, alice.ID, feed[0].Author.ID)
	})

	t.Run("RecentOrder", func(t *testing.T) {
		feed, err := posts.List(ctx, domain.FeedQuery{Sort: domain.FeedSortRecent, Limit: 10})
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, cold.ID, feed[0].ID)
	})

	t.Run("GetAndRoasts", func(t *testing.T) {
		post, err := posts.Get(ctx, hot.ID)
		require.NoError(t, err)
		require.NotNil(t, post.Author)

		list, err := roasts.ListByPost(ctx, hot.ID)
		require.NoError(t, err)
		assert.Len(t, list, 5)

		_, err = posts.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ReferencedImageKeys", func(t *testing.T) {
		assert.Equal(t, "uploads/hot.png", hot.ImageKey)

		refs, err := posts.ReferencedImageKeys(ctx, []string{"uploads/hot.png", "uploads/orphan.png"})
		require.NoError(t, err)
		assert.True(t, refs["uploads/hot.png"])
		assert.False(t, refs["uploads/orphan.png"])
	})
}
