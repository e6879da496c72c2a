package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                string    `json:"id" gorm:"primaryKey;type:text"`
	Name              *string   `json:"name" gorm:"type:text"`
	Image             *string   `json:"image" gorm:"type:text"`
	Provider          string    `json:"provider" gorm:"type:text;index:idx_provider_account"`
	ProviderAccountID string    `json:"providerAccountId" gorm:"type:text;index:idx_provider_account"`
	CDate             time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Post struct {
	ID       string    `json:"id" gorm:"primaryKey;type:text"`
	Title    string    `json:"title" gorm:"type:text;not null"`
	ImageURL string    `json:"imageUrl" gorm:"type:text;not null"`
	ImageKey string    `json:"-" gorm:"type:text;not null;default:'';index"`
	AuthorID string    `json:"authorId" gorm:"type:text;not null;index"`
	Author   User      `json:"author" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE;"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp();index"`
}

type Roast struct {
	ID       string    `json:"id" gorm:"primaryKey;type:text"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	AuthorID string    `json:"authorId" gorm:"type:text;not null;index"`
	Author   User      `json:"author" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE;"`
	PostID   string    `json:"postId" gorm:"type:text;not null;index"`
	Post     Post      `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE;"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (r *Roast) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
