package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nik132-eng/roastit/internal/domain"
)

var tracer = otel.Tracer("usecase")

// PostInput is the raw input of a post submission.
type PostInput struct {
	Title    string
	Image    []byte
	Filename string
}

type PostUsecase struct {
	repo  PostRepository
	media MediaStore
	notifier
}

func NewPostUsecase(repo PostRepository, media MediaStore, signal EventPublisher, cache FeedCache) *PostUsecase {
	return &PostUsecase{
		repo:     repo,
		media:    media,
		notifier: notifier{signal: signal, cache: cache},
	}
}

// SubmitPost uploads the image and then records the post. The record is
// written only after the media store returned a usable URL; an upload that
// is never referenced is left for the orphan sweep.
func (uc *PostUsecase) SubmitPost(ctx context.Context, caller domain.Caller, input PostInput) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.SubmitPost")
	defer span.End()

	if caller.Anonymous() {
		return domain.Post{}, domain.Unauthorized("Unauthorized")
	}
	span.SetAttributes(attribute.String("CallerId", caller.UserID))

	title := strings.TrimSpace(input.Title)
	if title == "" || len(input.Image) == 0 {
		return domain.Post{}, domain.InvalidInput("Title and image are required", nil)
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return domain.Post{}, domain.InvalidInput("Title is too long", nil)
	}

	mtype := mimetype.Detect(input.Image)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return domain.Post{}, domain.InvalidInput("Image must be an image file", nil)
	}

	object, err := uc.media.Upload(ctx, input.Image, domain.MediaUpload{
		Filename:    input.Filename,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
		Tags:        []string{domain.UploadTag},
	})
	if err != nil {
		span.RecordError(err)
		return domain.Post{}, domain.UploadFailed("Image upload failed", err)
	}
	if object.URL == "" {
		return domain.Post{}, domain.UploadFailed("Image upload failed, no url returned", nil)
	}
	span.SetAttributes(attribute.String("MediaKey", object.Key))

	post, err := uc.repo.Create(ctx, domain.Post{
		Title:    title,
		ImageURL: object.URL,
		ImageKey: object.Key,
		AuthorID: caller.UserID,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Post{}, classify(err, "Failed to create post")
	}

	uc.announce(ctx, domain.Event{Type: domain.EventPostCreated, Post: &post}, domain.PostsChannel)

	return post, nil
}
