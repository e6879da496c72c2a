package domain

import "time"

// Post is a roastable image. ImageURL is always a URL returned by the media
// store for a completed upload; ImageKey names that object in the store.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ImageURL   string    `json:"imageUrl"`
	ImageKey   string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	AuthorID   string    `json:"authorId"`
	Author     *User     `json:"author,omitempty"`
	RoastCount *int64    `json:"roastCount,omitempty"`
}

// Roast is a text comment on a Post.
type Roast struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	AuthorID  string    `json:"authorId"`
	PostID    string    `json:"postId"`
	Author    *User     `json:"author,omitempty"`
}

// PostDetail is a post with its roasts, newest first.
type PostDetail struct {
	Post
	Roasts []Roast `json:"roasts"`
}

// FeedQuery selects a page of the feed.
type FeedQuery struct {
	Sort  FeedSort
	Limit int
}
