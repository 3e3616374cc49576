package service

import (
	"context"
	"strconv"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"unipick/backend/internal/cache"
	"unipick/backend/internal/models"
	"unipick/backend/internal/repository"
)

// FavoriteNotifier pushes a notification to an item's owner when someone
// favorites their listing. Delivery is best-effort.
type FavoriteNotifier interface {
	NotifyFavorite(ctx context.Context, ownerID, itemTitle string, itemPrice float64)
}

// ItemService owns the listing lifecycle, including the moderation pass on
// create and on edits of moderated fields.
type ItemService struct {
	items      repository.ItemRepository
	moderation *ModerationService
	cache      *cache.Cache
	notifier   FavoriteNotifier
	logger     *zap.Logger
}

func NewItemService(items repository.ItemRepository, moderation *ModerationService, c *cache.Cache, notifier FavoriteNotifier, logger *zap.Logger) *ItemService {
	return &ItemService{
		items:      items,
		moderation: moderation,
		cache:      c,
		notifier:   notifier,
		logger:     logger,
	}
}

// Create stores a new listing and runs the first moderation pass over it.
func (s *ItemService) Create(ctx context.Context, userID string, req *models.ItemCreateRequest) (*models.Item, *ModerationResult, error) {
	item := &models.Item{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Images:       pq.StringArray(req.Images),
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}

	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, nil, err
	}

	result, err := s.moderation.Moderate(ctx, models.ContentTypeItem,
		strconv.FormatInt(item.ID, 10), userID, item.ModerationText())
	if err != nil {
		return nil, nil, err
	}

	item.ModerationStatus = result.Status
	item.ModerationLogID = &result.LogID
	if result.Status == models.StatusApproved {
		item.ApplyApproval()
	}

	return item, result, nil
}

// Update applies an owner edit. Only changes to title or description cost a
// fresh moderation pass; price, images and location edits leave the status
// and the ledger untouched.
func (s *ItemService) Update(ctx context.Context, userID string, itemID int64, req *models.ItemUpdateRequest) (*models.Item, *ModerationResult, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item.UserID != userID {
		return nil, nil, ErrPermissionDenied
	}

	sensitive := false
	if req.Title != nil && *req.Title != item.Title {
		item.Title = *req.Title
		sensitive = true
	}
	if req.Description != nil && *req.Description != item.Description {
		item.Description = *req.Description
		sensitive = true
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Images != nil {
		item.Images = pq.StringArray(*req.Images)
	}
	if req.LocationName != nil {
		item.LocationName = *req.LocationName
	}
	if req.Latitude != nil {
		item.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		item.Longitude = *req.Longitude
	}

	if sensitive {
		item.ModerationStatus = models.StatusPending
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, nil, err
	}

	if !sensitive {
		return item, nil, nil
	}

	result, err := s.moderation.Moderate(ctx, models.ContentTypeItem,
		strconv.FormatInt(item.ID, 10), userID, item.ModerationText())
	if err != nil {
		return nil, nil, err
	}

	item.ModerationStatus = result.Status
	item.ModerationLogID = &result.LogID
	if result.Status == models.StatusApproved {
		item.ApplyApproval()
	}

	return item, result, nil
}

// Get returns the effective view of an item for the given viewer.
func (s *ItemService) Get(ctx context.Context, itemID int64, viewerID string) (*ItemView, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return EffectiveItem(item, viewerID)
}

// List returns a page of listings, each reduced to the viewer's effective
// fields. Items with no public version are dropped from the page.
func (s *ItemService) List(ctx context.Context, viewerID string, limit, offset int) ([]*ItemView, error) {
	if limit < 1 || limit > 100 {
		limit = 12
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.items.ListItems(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]*ItemView, 0, len(items))
	for _, item := range items {
		view, err := EffectiveItem(item, viewerID)
		if err != nil {
			continue // hidden from this viewer
		}
		views = append(views, view)
	}
	return views, nil
}

// Delete removes an owner's listing.
func (s *ItemService) Delete(ctx context.Context, userID string, itemID int64) error {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return ErrPermissionDenied
	}
	return s.items.DeleteItem(ctx, itemID)
}

// Revert is the owner's self-service rollback to the last approved version.
func (s *ItemService) Revert(ctx context.Context, userID string, itemID int64) (*models.Item, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrPermissionDenied
	}

	item.RevertToApproved()
	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RecordView counts a view and refreshes the viewer's history.
func (s *ItemService) RecordView(ctx context.Context, itemID int64, viewerID string) (int64, error) {
	count, err := s.items.RecordView(ctx, itemID, viewerID)
	if err != nil {
		return 0, err
	}
	s.cache.InvalidateItemStats(ctx, itemID)
	return count, nil
}

// ToggleFavorite flips the viewer's favorite state and, when a favorite was
// added, notifies the owner in the background. Notification failure never
// affects the request.
func (s *ItemService) ToggleFavorite(ctx context.Context, itemID int64, userID string) (bool, error) {
	favorited, err := s.items.ToggleFavorite(ctx, itemID, userID)
	if err != nil {
		return false, err
	}
	s.cache.InvalidateItemStats(ctx, itemID)

	if favorited && s.notifier != nil {
		item, err := s.items.GetItemByID(ctx, itemID)
		if err == nil && item.UserID != userID {
			go s.notifier.NotifyFavorite(context.WithoutCancel(ctx), item.UserID, item.Title, item.Price)
		}
	}

	return favorited, nil
}

// Stats returns the item's counters, served from cache when warm.
func (s *ItemService) Stats(ctx context.Context, itemID int64, viewerID string) (*models.ItemStats, error) {
	// Only anonymous reads are cacheable: IsFavorited is per-viewer.
	if viewerID == "" {
		if cached, err := s.cache.GetItemStats(ctx, itemID); err == nil && cached != nil {
			return cached, nil
		}
	}

	stats, err := s.items.GetItemStats(ctx, itemID, viewerID)
	if err != nil {
		return nil, err
	}

	if viewerID == "" {
		s.cache.SetItemStats(ctx, itemID, stats)
	}
	return stats, nil
}

// Favorites returns the viewer's favorited listings as effective views.
func (s *ItemService) Favorites(ctx context.Context, userID string, limit, offset int) ([]*ItemView, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.items.ListFavorites(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.effectiveViews(items, userID), nil
}

// ViewHistory returns the viewer's recently viewed listings.
func (s *ItemService) ViewHistory(ctx context.Context, userID string, limit, offset int) ([]*ItemView, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.items.ListViewHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.effectiveViews(items, userID), nil
}

func (s *ItemService) effectiveViews(items []*models.Item, viewerID string) []*ItemView {
	views := make([]*ItemView, 0, len(items))
	for _, item := range items {
		view, err := EffectiveItem(item, viewerID)
		if err != nil {
			continue
		}
		views = append(views, view)
	}
	return views
}
