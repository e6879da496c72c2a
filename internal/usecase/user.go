package usecase

import (
	"context"

	"github.com/nik132-eng/roastit/internal/domain"
)

type UserUsecase struct {
	users UserRepository
	posts PostRepository
}

func NewUserUsecase(users UserRepository, posts PostRepository) *UserUsecase {
	return &UserUsecase{users: users, posts: posts}
}

func (uc *UserUsecase) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := uc.users.Get(ctx, id)
	if err != nil {
		return domain.User{}, classify(err, "Failed to fetch user")
	}
	return user, nil
}

// Profile returns the user with their posts, newest first.
func (uc *UserUsecase) Profile(ctx context.Context, id string) (domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Profile")
	defer span.End()

	user, err := uc.Get(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}

	posts, err := uc.posts.ListByAuthor(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Profile{}, classify(err, "Failed to fetch posts")
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return domain.Profile{
		User:      user,
		Posts:     posts,
		PostCount: int64(len(posts)),
	}, nil
}
