package repository

import (
	"github.com/nik132-eng/roastit/internal/domain"
	"github.com/nik132-eng/roastit/internal/infra/database/models"
)

func toDomainUser(u models.User) domain.User {
	return domain.User{
		ID:                u.ID,
		Name:              u.Name,
		Image:             u.Image,
		Provider:          u.Provider,
		ProviderAccountID: u.ProviderAccountID,
		CreatedAt:         u.CDate,
	}
}

func toDomainPost(p models.Post) domain.Post {
	post := domain.Post{
		ID:        p.ID,
		Title:     p.Title,
		ImageURL:  p.ImageURL,
		ImageKey:  p.ImageKey,
		CreatedAt: p.CDate,
		AuthorID:  p.AuthorID,
	}
	if p.Author.ID != "" {
		author := toDomainUser(p.Author)
		post.Author = &author
	}
	return post
}

func toDomainRoast(r models.Roast) domain.Roast {
	roast := domain.Roast{
		ID:        r.ID,
		Text:      r.Text,
		CreatedAt: r.CDate,
		AuthorID:  r.AuthorID,
		PostID:    r.PostID,
	}
	if r.Author.ID != "" {
		author := toDomainUser(r.Author)
		roast.Author = &author
	}
	return roast
}
