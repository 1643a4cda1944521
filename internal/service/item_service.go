package service

import (
	"context"
	"strings"
	"time"

	"lendshare/internal/domain"
	"lendshare/internal/models"

	"github.com/rs/zerolog"
)

// ItemService handles item CRUD, the owner's availability view, free-text
// search and the comment gate.
type ItemService struct {
	store  domain.Store
	cache  domain.ListingCache
	now    func() time.Time
	logger *zerolog.Logger
}

func NewItemService(store domain.Store, cache domain.ListingCache, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:  store,
		cache:  cache,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock overrides the service clock. Tests use this to pin "now".
func (s *ItemService) WithClock(now func() time.Time) *ItemService {
	s.now = now
	return s
}

// GetItems lists the owner's items with comments and, per item, the
// current and next approved booking windows.
func (s *ItemService) GetItems(ctx context.Context, ownerID int64) ([]*models.ItemDetails, error) {
	items, err := s.store.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []*models.ItemDetails{}, nil
	}

	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}
	now := s.now()

	comments, err := s.store.GetCommentViewsByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	current, err := s.store.CurrentBookingsForItems(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}
	next, err := s.store.NextBookingsForItems(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}

	details := make([]*models.ItemDetails, len(items))
	for i, item := range items {
		details[i] = &models.ItemDetails{
			Item:        *item,
			LastBooking: toWindow(current[item.ID]),
			NextBooking: toWindow(next[item.ID]),
			Comments:    commentsOrEmpty(comments[item.ID]),
		}
	}
	return details, nil
}

// GetItem returns one item with its comments. The booking windows are
// attached only when the caller owns the item.
func (s *ItemService) GetItem(ctx context.Context, callerID, itemID int64) (*models.ItemDetails, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("item not found: %d", itemID)
	}

	comments, err := s.store.GetCommentViewsByItems(ctx, []int64{itemID})
	if err != nil {
		return nil, err
	}

	details := &models.ItemDetails{
		Item:     *item,
		Comments: commentsOrEmpty(comments[itemID]),
	}

	if item.OwnerID == callerID {
		now := s.now()
		current, err := s.store.CurrentBookingsForItems(ctx, []int64{itemID}, now)
		if err != nil {
			return nil, err
		}
		next, err := s.store.NextBookingsForItems(ctx, []int64{itemID}, now)
		if err != nil {
			return nil, err
		}
		details.LastBooking = toWindow(current[itemID])
		details.NextBooking = toWindow(next[itemID])
	}

	return details, nil
}

// Search matches available items by name or description. A blank query
// returns an empty list without touching the store.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return []*models.Item{}, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetSearch(ctx, query); ok {
			return cached, nil
		}
	}

	items, err := s.store.SearchItems(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}

	if s.cache != nil {
		s.cache.SetSearch(ctx, query, items)
	}
	return items, nil
}

// AddItem lists a new item for the owner. A request id, when present,
// must resolve to an existing item request.
func (s *ItemService) AddItem(ctx context.Context, ownerID int64, draft models.Item) (*models.Item, error) {
	owner, err := s.store.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.NotFound("user not found: %d", ownerID)
	}

	if draft.RequestID != nil {
		request, err := s.store.GetRequestByID(ctx, *draft.RequestID)
		if err != nil {
			return nil, err
		}
		if request == nil {
			return nil, domain.NotFound("request not found: %d", *draft.RequestID)
		}
	}

	item := &models.Item{
		Name:        draft.Name,
		Description: draft.Description,
		Available:   draft.Available,
		OwnerID:     owner.ID,
		RequestID:   draft.RequestID,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// UpdateItem merges non-nil patch fields into the item. The lookup is
// owner-scoped, so updating somebody else's item reads as NotFound.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.store.GetItemByIDAndOwner(ctx, itemID, ownerID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("item not found for user %d: %d", ownerID, itemID)
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes the item if the caller owns it. Deleting a missing
// or foreign item is a no-op, matching the historical behavior.
func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID int64) error {
	return s.store.DeleteItemByOwner(ctx, itemID, ownerID)
}

// CreateComment persists a review once the author holds an approved,
// already-ended booking for the item.
func (s *ItemService) CreateComment(ctx context.Context, authorID, itemID int64, text string) (*models.CommentView, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("item not found: %d", itemID)
	}

	author, err := s.store.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, domain.NotFound("user not found: %d", authorID)
	}

	now := s.now()
	eligible, err := s.store.HasCompletedApprovedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, domain.NotAvailable(domain.ReasonNoCompletedBooking, "user cannot leave a review")
	}

	comment := &models.Comment{
		Text:     text,
		ItemID:   item.ID,
		AuthorID: author.ID,
		Created:  now,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	return &models.CommentView{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorName: author.Name,
		Created:    comment.Created,
	}, nil
}

func toWindow(b *models.Booking) *models.BookingWindow {
	if b == nil {
		return nil
	}
	return &models.BookingWindow{Start: b.Start, End: b.End}
}

func commentsOrEmpty(views []models.CommentView) []models.CommentView {
	if views == nil {
		return []models.CommentView{}
	}
	return views
}
