package models

// User is somebody who can own items, book other people's items and post
// item requests. Email is unique across the service.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserPatch carries a partial user update. Nil fields are left unchanged.
type UserPatch struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
}
