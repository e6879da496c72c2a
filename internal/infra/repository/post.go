package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nik132-eng/roastit/internal/domain"
	"github.com/nik132-eng/roastit/internal/infra/database/models"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	model := models.Post{
		Title:    post.Title,
		ImageURL: post.ImageURL,
		ImageKey: post.ImageKey,
		AuthorID: post.AuthorID,
	}

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Post{}, domain.InvalidInput("author does not exist", err)
		}
		return domain.Post{}, err
	}

	return toDomainPost(model), nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (domain.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		Take(&post).Error
	if err != nil {
		return domain.Post{}, notFoundOr(err, "post")
	}
	return toDomainPost(post), nil
}

type rankedPost struct {
	ID         string `gorm:"column:id"`
	RoastCount int64  `gorm:"column:roast_count"`
}

// List returns one feed page. Trending orders by roast count and breaks
// ties by recency; recent orders by recency alone.
func (r *PostRepository) List(ctx context.Context, query domain.FeedQuery) ([]domain.Post, error) {

	if query.Sort != domain.FeedSortTrending {
		var rows []models.Post
		err := r.db.WithContext(ctx).
			Preload("Author").
			Order("c_date DESC").
			Limit(query.Limit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}

		posts := make([]domain.Post, len(rows))
		for i, row := range rows {
			posts[i] = toDomainPost(row)
		}
		return posts, nil
	}

	var posts []domain.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ranked []rankedPost
		err := tx.Model(&models.Post{}).
			Select("posts.id AS id, COUNT(roasts.id) AS roast_count").
			Joins("LEFT JOIN roasts ON roasts.post_id = posts.id").
			Group("posts.id, posts.c_date").
			Order("roast_count DESC").
			Order("posts.c_date DESC").
			Limit(query.Limit).
			Scan(&ranked).Error
		if err != nil {
			return err
		}
		if len(ranked) == 0 {
			posts = []domain.Post{}
			return nil
		}

		ids := make([]string, len(ranked))
		for i, row := range ranked {
			ids[i] = row.ID
		}

		var rows []models.Post
		err = tx.Preload("Author").Where("id IN ?", ids).Find(&rows).Error
		if err != nil {
			return err
		}

		byID := make(map[string]models.Post, len(rows))
		for _, row := range rows {
			byID[row.ID] = row
		}

		posts = make([]domain.Post, 0, len(ranked))
		for _, row := range ranked {
			model, ok := byID[row.ID]
			if !ok {
				continue
			}
			post := toDomainPost(model)
			count := row.RoastCount
			post.RoastCount = &count
			posts = append(posts, post)
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	var rows []models.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("c_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	posts := make([]domain.Post, len(rows))
	for i, row := range rows {
		posts[i] = toDomainPost(row)
	}
	return posts, nil
}

// ReferencedImageKeys reports which of the media keys are the image of some
// post.
func (r *PostRepository) ReferencedImageKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	result := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Distinct("image_key").
		Where("image_key IN ?", keys).
		Pluck("image_key", &found).Error
	if err != nil {
		return nil, err
	}

	for _, u := range found {
		result[u] = true
	}
	return result, nil
}
