package models

import "time"

// Item is something an owner lists for borrowing. Available is an
// owner-managed flag; it is not flipped by booking approval.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"ownerId"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

// ItemPatch carries a partial item update. Nil fields are left unchanged.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// BookingWindow is the display-only {start, end} pair surfaced on an
// owner's item view. It must not be used for authorization decisions.
type BookingWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ItemDetails is an item enriched with its comments and, for the owner,
// the current and next approved booking windows.
type ItemDetails struct {
	Item
	LastBooking *BookingWindow `json:"lastBooking,omitempty"`
	NextBooking *BookingWindow `json:"nextBooking,omitempty"`
	Comments    []CommentView  `json:"comments"`
}
