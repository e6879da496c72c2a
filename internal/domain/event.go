package domain

import "time"

// Event is published on the realtime channels after a successful write.
type Event struct {
	Type      string    `json:"type"`
	Channel   string    `json:"channel"`
	Post      *Post     `json:"post,omitempty"`
	Roast     *Roast    `json:"roast,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
