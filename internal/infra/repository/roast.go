package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nik132-eng/roastit/internal/domain"
	"github.com/nik132-eng/roastit/internal/infra/database/models"
)

type RoastRepository struct {
	db *gorm.DB
}

func NewRoastRepository(db *gorm.DB) *RoastRepository {
	return &RoastRepository{db: db}
}

// Create inserts the roast. The post_id foreign key is the only existence
// check for the target post.
func (r *RoastRepository) Create(ctx context.Context, roast domain.Roast) (domain.Roast, error) {
	model := models.Roast{
		Text:     roast.Text,
		AuthorID: roast.AuthorID,
		PostID:   roast.PostID,
	}

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Roast{}, domain.InvalidInput("post does not exist", err)
		}
		return domain.Roast{}, err
	}

	return toDomainRoast(model), nil
}

func (r *RoastRepository) ListByPost(ctx context.Context, postID string) ([]domain.Roast, error) {
	var rows []models.Roast
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("c_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	roasts := make([]domain.Roast, len(rows))
	for i, row := range rows {
		roasts[i] = toDomainRoast(row)
	}
	return roasts, nil
}
