package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nik132-eng/roastit/internal/domain"
	"github.com/nik132-eng/roastit/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user on first sight and refreshes the profile fields
// the identity provider owns.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) (domain.User, error) {
	model := models.User{
		ID:                user.ID,
		Name:              user.Name,
		Image:             user.Image,
		Provider:          user.Provider,
		ProviderAccountID: user.ProviderAccountID,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "image", "provider", "provider_account_id"}),
	}).Create(&model).Error
	if err != nil {
		return domain.User{}, err
	}

	return r.Get(ctx, user.ID)
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return domain.User{}, notFoundOr(err, "user")
	}
	return toDomainUser(user), nil
}
