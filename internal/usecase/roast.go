package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/nik132-eng/roastit/internal/domain"
)

// RoastInput is the raw input of a roast submission.
type RoastInput struct {
	Text   string `json:"text"`
	PostID string `json:"postId"`
}

type RoastUsecase struct {
	repo RoastRepository
	notifier
}

func NewRoastUsecase(repo RoastRepository, signal EventPublisher, cache FeedCache) *RoastUsecase {
	return &RoastUsecase{
		repo:     repo,
		notifier: notifier{signal: signal, cache: cache},
	}
}

// SubmitRoast records a roast on an existing post. Whether the post exists
// is decided by the store on insert.
func (uc *RoastUsecase) SubmitRoast(ctx context.Context, caller domain.Caller, input RoastInput) (domain.Roast, error) {
	ctx, span := tracer.Start(ctx, "Roast.Usecase.SubmitRoast")
	defer span.End()

	if caller.Anonymous() {
		return domain.Roast{}, domain.Unauthorized("Unauthorized")
	}

	text := strings.TrimSpace(input.Text)
	postID := strings.TrimSpace(input.PostID)
	if text == "" || postID == "" {
		return domain.Roast{}, domain.InvalidInput("Text and postId are required", nil)
	}
	if utf8.RuneCountInString(text) > domain.MaxRoastLength {
		return domain.Roast{}, domain.InvalidInput("Roast is too long", nil)
	}

	roast, err := uc.repo.Create(ctx, domain.Roast{
		Text:     text,
		PostID:   postID,
		AuthorID: caller.UserID,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Roast{}, classify(err, "Failed to create roast")
	}

	uc.announce(
		ctx,
		domain.Event{Type: domain.EventRoastCreated, Roast: &roast},
		domain.PostChannel(roast.PostID), domain.PostsChannel,
	)

	return roast, nil
}
