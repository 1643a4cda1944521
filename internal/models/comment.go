package models

import "time"

// Comment is feedback left on an item by a user who has completed an
// approved booking for it. Immutable after creation.
type Comment struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	ItemID   int64     `json:"itemId"`
	AuthorID int64     `json:"authorId"`
	Created  time.Time `json:"created"`
}

// CommentView is the outward projection of a comment: the author is
// exposed by display name, not id.
type CommentView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}
