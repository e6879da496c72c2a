package usecase

import (
	"context"

	"github.com/nik132-eng/roastit/internal/domain"
)

// UserRepository defines persistence/lookup for users.
type UserRepository interface {
	Upsert(ctx context.Context, user domain.User) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
}

// PostRepository defines storage operations for posts. Create assigns the
// id and creation time.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
	Get(ctx context.Context, id string) (domain.Post, error)
	List(ctx context.Context, query domain.FeedQuery) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
	ReferencedImageKeys(ctx context.Context, keys []string) (map[string]bool, error)
}

// RoastRepository defines storage operations for roasts. A roast for a
// post that does not exist fails with domain.ErrInvalidInput.
type RoastRepository interface {
	Create(ctx context.Context, roast domain.Roast) (domain.Roast, error)
	ListByPost(ctx context.Context, postID string) ([]domain.Roast, error)
}

// MediaStore encapsulates the external image host.
type MediaStore interface {
	Upload(ctx context.Context, data []byte, meta domain.MediaUpload) (domain.MediaObject, error)
	List(ctx context.Context) ([]domain.MediaObject, error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher fans out write events to realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event domain.Event) error
}

// FeedCache holds rendered feed pages.
type FeedCache interface {
	Get(ctx context.Context, query domain.FeedQuery) ([]domain.Post, bool)
	Set(ctx context.Context, query domain.FeedQuery, posts []domain.Post)
	Invalidate(ctx context.Context)
}
