package domain

import (
	"context"
	"time"

	"lendshare/internal/models"
)

// Store is the durable record storage the services run against. Point
// lookups return (nil, nil) when the entity does not exist; turning that
// into a NotFound error is the caller's job.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItemByOwner(ctx context.Context, id, ownerID int64) error
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.Status) error
	ListBookingsByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time) ([]*models.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time) ([]*models.Booking, error)
	ListBookingsInRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	CurrentBookingsForItems(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error)
	NextBookingsForItems(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error)
	HasCompletedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentViewsByItems(ctx context.Context, itemIDs []int64) (map[int64][]models.CommentView, error)

	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	ListRequestsFromOthers(ctx context.Context, requesterID int64, offset, limit int) ([]*models.ItemRequest, error)
}

// ListingCache caches item search results on the read path. Implementations
// must treat a miss and a backend failure the same way: (nil, false).
type ListingCache interface {
	GetSearch(ctx context.Context, query string) ([]*models.Item, bool)
	SetSearch(ctx context.Context, query string, items []*models.Item)
}

type BookingService interface {
	CreateBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	SetApproval(ctx context.Context, callerID, bookingID int64, approved bool) (*models.Booking, error)
	GetBooking(ctx context.Context, callerID, bookingID int64) (*models.Booking, error)
	ListByState(ctx context.Context, userID int64, state string) ([]*models.Booking, error)
	ListByOwnerState(ctx context.Context, ownerID int64, state string) ([]*models.Booking, error)
	ListRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
}

type ItemService interface {
	GetItems(ctx context.Context, ownerID int64) ([]*models.ItemDetails, error)
	GetItem(ctx context.Context, callerID, itemID int64) (*models.ItemDetails, error)
	Search(ctx context.Context, text string) ([]*models.Item, error)
	AddItem(ctx context.Context, ownerID int64, draft models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, ownerID, itemID int64) error
	CreateComment(ctx context.Context, authorID, itemID int64, text string) (*models.CommentView, error)
}

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type RequestService interface {
	Create(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error)
	GetByID(ctx context.Context, callerID, requestID int64) (*models.RequestWithItems, error)
	ListOwn(ctx context.Context, requesterID int64) ([]*models.RequestWithItems, error)
	ListOthers(ctx context.Context, requesterID int64, from, size int) ([]*models.RequestWithItems, error)
}
