package service

import (
	"context"
	"testing"
	"time"

	"lendshare/internal/domain"
	"lendshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemService(t *testing.T, cache domain.ListingCache) (*ItemService, *bookingFixture) {
	t.Helper()
	db := setupStore(t)
	svc := NewItemService(db, cache, testLogger()).WithClock(func() time.Time { return testNow })
	owner := seedUser(t, db, "owner@example.com", "Owner")
	booker := seedUser(t, db, "booker@example.com", "Booker")
	item := seedItem(t, db, owner.ID, "Drill", true)
	return svc, &bookingFixture{db: db, owner: owner, booker: booker, item: item}
}

func TestGetItems(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	seedBooking(t, f.db, f.item.ID, f.booker.ID,
		testNow.Add(-time.Hour), testNow.Add(time.Hour), models.StatusApproved)
	upcoming := seedBooking(t, f.db, f.item.ID, f.booker.ID,
		testNow.AddDate(0, 0, 2), testNow.AddDate(0, 0, 3), models.StatusApproved)

	details, err := svc.GetItems(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].LastBooking)
	require.NotNil(t, details[0].NextBooking)
	assert.True(t, details[0].NextBooking.Start.Equal(upcoming.Start))
	assert.NotNil(t, details[0].Comments)
	assert.Empty(t, details[0].Comments)

	empty, err := svc.GetItems(ctx, f.booker.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGetItemOwnerSeesWindows(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	seedBooking(t, f.db, f.item.ID, f.booker.ID,
		testNow.Add(-time.Hour), testNow.Add(time.Hour), models.StatusApproved)

	asOwner, err := svc.GetItem(ctx, f.owner.ID, f.item.ID)
	require.NoError(t, err)
	assert.NotNil(t, asOwner.LastBooking)

	asBooker, err := svc.GetItem(ctx, f.booker.ID, f.item.ID)
	require.NoError(t, err)
	assert.Nil(t, asBooker.LastBooking)
	assert.Nil(t, asBooker.NextBooking)

	_, err = svc.GetItem(ctx, f.owner.ID, 999)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

// recordingCache counts lookups so tests can tell where a result came from.
type recordingCache struct {
	entries map[string][]*models.Item
	gets    int
	sets    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]*models.Item{}}
}

func (c *recordingCache) GetSearch(ctx context.Context, query string) ([]*models.Item, bool) {
	c.gets++
	items, ok := c.entries[query]
	return items, ok
}

func (c *recordingCache) SetSearch(ctx context.Context, query string, items []*models.Item) {
	c.sets++
	c.entries[query] = items
}

func TestSearch(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	seedItem(t, f.db, f.owner.ID, "Hidden saw", false)

	items, err := svc.Search(ctx, "  DRILL ")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.item.ID, items[0].ID)

	unavailable, err := svc.Search(ctx, "saw")
	require.NoError(t, err)
	assert.NotNil(t, unavailable)
	assert.Empty(t, unavailable)
}

func TestSearchBlankQuery(t *testing.T) {
	cache := newRecordingCache()
	svc, _ := newItemService(t, cache)

	items, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	// Blank queries never reach the cache or the store.
	assert.Zero(t, cache.gets)
	assert.Zero(t, cache.sets)
}

func TestSearchUsesCache(t *testing.T) {
	cache := newRecordingCache()
	svc, f := newItemService(t, cache)
	ctx := context.Background()

	first, err := svc.Search(ctx, "drill")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cache.sets)

	// Second hit is served from the cache even after the row changes.
	f.item.Available = false
	require.NoError(t, f.db.UpdateItem(ctx, f.item))

	second, err := svc.Search(ctx, "DRILL")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
}

func TestAddItem(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, f.owner.ID, models.Item{
		Name: "Ladder", Description: "3 meters", Available: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, f.owner.ID, item.OwnerID)

	_, err = svc.AddItem(ctx, 999, models.Item{Name: "Ladder", Description: "x", Available: true})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestAddItemForRequest(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	request := &models.ItemRequest{Description: "need a ladder", RequesterID: f.booker.ID, Created: testNow}
	require.NoError(t, f.db.CreateRequest(ctx, request))

	item, err := svc.AddItem(ctx, f.owner.ID, models.Item{
		Name: "Ladder", Description: "3 meters", Available: true, RequestID: &request.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, item.RequestID)
	assert.Equal(t, request.ID, *item.RequestID)

	missing := int64(999)
	_, err = svc.AddItem(ctx, f.owner.ID, models.Item{
		Name: "Ladder", Description: "3 meters", Available: true, RequestID: &missing,
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUpdateItem(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	available := false
	updated, err := svc.UpdateItem(ctx, f.owner.ID, f.item.ID, models.ItemPatch{Available: &available})
	require.NoError(t, err)
	assert.False(t, updated.Available)
	// Untouched fields survive the merge.
	assert.Equal(t, "Drill", updated.Name)

	name := "Impact drill"
	updated, err = svc.UpdateItem(ctx, f.owner.ID, f.item.ID, models.ItemPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Impact drill", updated.Name)
	assert.False(t, updated.Available)
}

func TestUpdateItemNotOwner(t *testing.T) {
	svc, f := newItemService(t, nil)

	name := "Stolen drill"
	_, err := svc.UpdateItem(context.Background(), f.booker.ID, f.item.ID, models.ItemPatch{Name: &name})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestDeleteItem(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeleteItem(ctx, f.owner.ID, f.item.ID))
	_, err := svc.GetItem(ctx, f.owner.ID, f.item.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	// Deleting again, or deleting someone else's item, is a silent no-op.
	require.NoError(t, svc.DeleteItem(ctx, f.owner.ID, f.item.ID))
	require.NoError(t, svc.DeleteItem(ctx, f.booker.ID, 12345))
}

func TestCreateComment(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	seedBooking(t, f.db, f.item.ID, f.booker.ID,
		testNow.AddDate(0, 0, -5), testNow.AddDate(0, 0, -3), models.StatusApproved)

	view, err := svc.CreateComment(ctx, f.booker.ID, f.item.ID, "great drill")
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "great drill", view.Text)
	assert.Equal(t, "Booker", view.AuthorName)
	assert.True(t, view.Created.Equal(testNow))

	details, err := svc.GetItem(ctx, f.booker.ID, f.item.ID)
	require.NoError(t, err)
	require.Len(t, details.Comments, 1)
	assert.Equal(t, "great drill", details.Comments[0].Text)
}

func TestCreateCommentGate(t *testing.T) {
	svc, f := newItemService(t, nil)
	ctx := context.Background()

	requireDenied := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		de := domain.AsError(err)
		require.NotNil(t, de)
		assert.Equal(t, domain.KindNotAvailable, de.Kind)
		assert.Equal(t, domain.ReasonNoCompletedBooking, de.Reason)
		assert.Equal(t, "user cannot leave a review", err.Error())
	}

	t.Run("no booking at all", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, f.booker.ID, f.item.ID, "never used it")
		requireDenied(t, err)
	})

	t.Run("elapsed but never approved", func(t *testing.T) {
		seedBooking(t, f.db, f.item.ID, f.booker.ID,
			testNow.AddDate(0, 0, -5), testNow.AddDate(0, 0, -3), models.StatusWaiting)
		_, err := svc.CreateComment(ctx, f.booker.ID, f.item.ID, "still waiting")
		requireDenied(t, err)
	})

	t.Run("approved but not ended", func(t *testing.T) {
		seedBooking(t, f.db, f.item.ID, f.booker.ID,
			testNow.Add(-time.Hour), testNow.Add(time.Hour), models.StatusApproved)
		_, err := svc.CreateComment(ctx, f.booker.ID, f.item.ID, "using it now")
		requireDenied(t, err)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, f.booker.ID, 999, "ghost")
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, 999, f.item.ID, "ghost")
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})
}
