package models

import "time"

// ItemRequest is a "looking for an item like X" post. Other users respond
// by listing items that reference the request.
type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"requesterId"`
	Created     time.Time `json:"created"`
}

// RequestWithItems is a request together with the items listed in
// response to it.
type RequestWithItems struct {
	ItemRequest
	Items []Item `json:"items"`
}
