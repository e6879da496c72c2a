package domain

import "time"

// User is an identity known to the service. It is created on first
// successful authentication and never mutated by the posting flows.
type User struct {
	ID                string    `json:"id"`
	Name              *string   `json:"name,omitempty"`
	Image             *string   `json:"image,omitempty"`
	Provider          string    `json:"-"`
	ProviderAccountID string    `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Caller is the resolved identity of the requester. The zero value is the
// anonymous caller.
type Caller struct {
	UserID string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Image  *string `json:"image,omitempty"`
}

func (c Caller) Anonymous() bool {
	return c.UserID == ""
}

// Profile is a user together with the posts they have published.
type Profile struct {
	User      User   `json:"user"`
	Posts     []Post `json:"posts"`
	PostCount int64  `json:"postCount"`
}
