package usecase

import (
	"context"

	"github.com/nik132-eng/roastit/internal/domain"
)

type FeedUsecase struct {
	posts  PostRepository
	roasts RoastRepository
	cache  FeedCache
}

func NewFeedUsecase(posts PostRepository, roasts RoastRepository, cache FeedCache) *FeedUsecase {
	return &FeedUsecase{
		posts:  posts,
		roasts: roasts,
		cache:  cache,
	}
}

// NormalizeFeedQuery fills in the default sort and clamps the limit.
func NormalizeFeedQuery(query domain.FeedQuery) domain.FeedQuery {
	if query.Sort == "" {
		query.Sort = domain.FeedSortRecent
	}
	if query.Limit <= 0 {
		query.Limit = domain.DefaultFeedLimit
	}
	if query.Limit > domain.MaxFeedLimit {
		query.Limit = domain.MaxFeedLimit
	}
	return query
}

// ListPosts returns the newest posts, or the most roasted ones when sorted
// by trending. Ties on roast count fall back to recency.
func (uc *FeedUsecase) ListPosts(ctx context.Context, query domain.FeedQuery) ([]domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Feed.Usecase.ListPosts")
	defer span.End()

	query = NormalizeFeedQuery(query)
	if query.Sort != domain.FeedSortRecent && query.Sort != domain.FeedSortTrending {
		return nil, domain.InvalidInput("sort must be recent or trending", nil)
	}

	if uc.cache != nil {
		if posts, ok := uc.cache.Get(ctx, query); ok {
			return posts, nil
		}
	}

	posts, err := uc.posts.List(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, classify(err, "Failed to fetch posts")
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, query, posts)
	}
	return posts, nil
}

// GetPost returns a post with its author and roasts, newest roast first.
func (uc *FeedUsecase) GetPost(ctx context.Context, id string) (domain.PostDetail, error) {
	ctx, span := tracer.Start(ctx, "Feed.Usecase.GetPost")
	defer span.End()

	if id == "" {
		return domain.PostDetail{}, domain.InvalidInput("post id is required", nil)
	}

	post, err := uc.posts.Get(ctx, id)
	if err != nil {
		return domain.PostDetail{}, classify(err, "Failed to fetch post")
	}

	roasts, err := uc.roasts.ListByPost(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.PostDetail{}, classify(err, "Failed to fetch roasts")
	}
	if roasts == nil {
		roasts = []domain.Roast{}
	}

	return domain.PostDetail{Post: post, Roasts: roasts}, nil
}
