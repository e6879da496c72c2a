package domain

import "time"

// MediaUpload describes a binary payload handed to the media store.
type MediaUpload struct {
	Filename    string
	ContentType string
	Extension   string
	Tags        []string
}

// MediaObject is an object held by the media store.
type MediaObject struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// SweepResult summarizes one orphan sweep pass.
type SweepResult struct {
	Scanned int      `json:"scanned"`
	Kept    int      `json:"kept"`
	Young   int      `json:"young"`
	Deleted []string `json:"deleted"`
}
