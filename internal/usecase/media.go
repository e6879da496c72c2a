package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/nik132-eng/roastit/internal/domain"
)

const sweepBatchSize = 500

type MediaUsecase struct {
	media MediaStore
	posts PostRepository
	grace time.Duration
	now   func() time.Time
}

func NewMediaUsecase(media MediaStore, posts PostRepository, grace time.Duration, now func() time.Time) *MediaUsecase {
	if now == nil {
		now = time.Now
	}
	return &MediaUsecase{
		media: media,
		posts: posts,
		grace: grace,
		now:   now,
	}
}

// SweepOrphans deletes uploaded objects that no post references. Objects
// younger than the grace period are kept, since a submission may still be
// between its upload and its insert.
func (uc *MediaUsecase) SweepOrphans(ctx context.Context) (domain.SweepResult, error) {
	ctx, span := tracer.Start(ctx, "Media.Usecase.SweepOrphans")
	defer span.End()

	result := domain.SweepResult{Deleted: []string{}}

	objects, err := uc.media.List(ctx)
	if err != nil {
		span.RecordError(err)
		return result, errors.Wrap(err, "MediaUsecase.SweepOrphans: list failed")
	}
	result.Scanned = len(objects)

	cutoff := uc.now().Add(-uc.grace)
	candidates := make([]domain.MediaObject, 0, len(objects))
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			result.Young++
			continue
		}
		candidates = append(candidates, obj)
	}

	for start := 0; start < len(candidates); start += sweepBatchSize {
		end := min(start+sweepBatchSize, len(candidates))
		batch := candidates[start:end]

		keys := make([]string, len(batch))
		for i, obj := range batch {
			keys[i] = obj.Key
		}

		referenced, err := uc.posts.ReferencedImageKeys(ctx, keys)
		if err != nil {
			span.RecordError(err)
			return result, errors.Wrap(err, "MediaUsecase.SweepOrphans: reference lookup failed")
		}

		for _, obj := range batch {
			if referenced[obj.Key] {
				result.Kept++
				continue
			}
			if err := uc.media.Delete(ctx, obj.Key); err != nil {
				span.RecordError(err)
				return result, errors.Wrapf(err, "MediaUsecase.SweepOrphans: delete %s failed", obj.Key)
			}
			slog.InfoContext(
				ctx, "swept orphaned upload",
				slog.String("key", obj.Key),
				slog.String("module", "sweep"),
			)
			result.Deleted = append(result.Deleted, obj.Key)
		}
	}

	return result, nil
}
