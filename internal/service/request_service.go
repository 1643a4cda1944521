package service

import (
	"context"
	"time"

	"lendshare/internal/domain"
	"lendshare/internal/models"

	"github.com/rs/zerolog"
)

// RequestService runs the "I need an item like X" board.
type RequestService struct {
	store  domain.Store
	now    func() time.Time
	logger *zerolog.Logger
}

func NewRequestService(store domain.Store, logger *zerolog.Logger) *RequestService {
	return &RequestService{store: store, now: time.Now, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	requester, err := s.store.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, domain.NotFound("user not found: %d", requesterID)
	}

	request := &models.ItemRequest{
		Description: description,
		RequesterID: requester.ID,
		Created:     s.now(),
	}
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requester_id", requesterID).Msg("item request created")
	return request, nil
}

func (s *RequestService) GetByID(ctx context.Context, callerID, requestID int64) (*models.RequestWithItems, error) {
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}

	request, err := s.store.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.NotFound("request not found: %d", requestID)
	}

	withItems, err := s.attachItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return withItems[0], nil
}

func (s *RequestService) ListOwn(ctx context.Context, requesterID int64) ([]*models.RequestWithItems, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.store.ListRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// ListOthers pages through requests posted by everyone except the caller,
// newest first. from is a row offset, size the page length.
func (s *RequestService) ListOthers(ctx context.Context, requesterID int64, from, size int) ([]*models.RequestWithItems, error) {
	if from < 0 || size <= 0 {
		return nil, domain.InvalidArgument("invalid pagination: from=%d size=%d", from, size)
	}

	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.store.ListRequestsFromOthers(ctx, requesterID, from, size)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// attachItems resolves, per request, the items listed in response to it.
func (s *RequestService) attachItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.RequestWithItems, error) {
	result := make([]*models.RequestWithItems, len(requests))
	if len(requests) == 0 {
		return result, nil
	}

	requestIDs := make([]int64, len(requests))
	for i, request := range requests {
		requestIDs[i] = request.ID
	}

	items, err := s.store.GetItemsByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]models.Item)
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		byRequest[*item.RequestID] = append(byRequest[*item.RequestID], *item)
	}

	for i, request := range requests {
		responding := byRequest[request.ID]
		if responding == nil {
			responding = []models.Item{}
		}
		result[i] = &models.RequestWithItems{
			ItemRequest: *request,
			Items:       responding,
		}
	}
	return result, nil
}

func (s *RequestService) requireUser(ctx context.Context, userID int64) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NotFound("user not found: %d", userID)
	}
	return nil
}
