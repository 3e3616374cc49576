package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"unipick/backend/internal/models"
)

// MockItemRepository is a mock implementation of the ItemRepository interface
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) CreateItem(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) UpdateItem(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) DeleteItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) RecordView(ctx context.Context, itemID int64, userID string) (int64, error) {
	args := m.Called(ctx, itemID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) ToggleFavorite(ctx context.Context, itemID int64, userID string) (bool, error) {
	args := m.Called(ctx, itemID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) GetItemStats(ctx context.Context, itemID int64, userID string) (*models.ItemStats, error) {
	args := m.Called(ctx, itemID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemStats), args.Error(1)
}

func (m *MockItemRepository) ListFavorites(ctx context.Context, userID string, limit, offset int) ([]*models.Item, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) ListViewHistory(ctx context.Context, userID string, limit, offset int) ([]*models.Item, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

// mockNotifier records NotifyFavorite calls for assertion.
type mockNotifier struct {
	mu      sync.Mutex
	ownerID string
	called  chan struct{}
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{called: make(chan struct{}, 1)}
}

func (n *mockNotifier) NotifyFavorite(ctx context.Context, ownerID, itemTitle string, itemPrice float64) {
	n.mu.Lock()
	n.ownerID = ownerID
	n.mu.Unlock()
	n.called <- struct{}{}
}

func newItemService(items *MockItemRepository, classifier *MockClassifier, modRepo *MockModerationRepository, notifier FavoriteNotifier) *ItemService {
	moderation := NewModerationService(classifier, modRepo, nil, zap.NewNop())
	return NewItemService(items, moderation, nil, notifier, zap.NewNop())
}

func TestItemCreate_ApprovedPublishesImmediately(t *testing.T) {
	items := new(MockItemRepository)
	classifier := new(MockClassifier)
	modRepo := new(MockModerationRepository)
	svc := newItemService(items, classifier, modRepo, nil)

	items.On("CreateItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		item := args.Get(1).(*models.Item)
		item.ID = 42
		item.ModerationStatus = models.StatusPending
	}).Return(nil)
	classifier.On("Classify", mock.Anything, "Bike\nGood condition").Return(&models.ScoreReport{MaxScore: 0.05})
	modRepo.On("Record", mock.Anything, mock.MatchedBy(func(log *models.ModerationLog) bool {
		return log.ContentID == "42" && log.Status == models.StatusApproved
	})).Return(nil)

	item, result, err := svc.Create(context.Background(), "user-1", &models.ItemCreateRequest{
		Title:       "Bike",
		Description: "Good condition",
		Price:       120,
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, result.Status)
	assert.Equal(t, models.StatusApproved, item.ModerationStatus)
	// Approval publishes the draft as the shadow copy.
	assert.Equal(t, "Bike", item.DisplayTitle)
	items.AssertExpectations(t)
	modRepo.AssertExpectations(t)
}

func TestItemCreate_FlaggedStaysUnpublished(t *testing.T) {
	items := new(MockItemRepository)
	classifier := new(MockClassifier)
	modRepo := new(MockModerationRepository)
	svc := newItemService(items, classifier, modRepo, nil)

	items.On("CreateItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Item).ID = 43
	}).Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything).Return(&models.ScoreReport{MaxScore: 0.6})
	modRepo.On("Record", mock.Anything, mock.Anything).Return(nil)

	item, result, err := svc.Create(context.Background(), "user-1", &models.ItemCreateRequest{
		Title: "Sketchy thing",
		Price: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusFlagged, result.Status)
	assert.Empty(t, item.DisplayTitle)
}

func TestItemUpdate_TitleChangeTriggersModeration(t *testing.T) {
	items := new(MockItemRepository)
	classifier := new(MockClassifier)
	modRepo := new(MockModerationRepository)
	svc := newItemService(items, classifier, modRepo, nil)

	existing := &models.Item{
		ID: 42, UserID: "user-1",
		Title: "Bike", Description: "desc",
		DisplayTitle: "Bike", DisplayDescription: "desc",
		ModerationStatus: models.StatusApproved,
	}
	items.On("GetItemByID", mock.Anything, int64(42)).Return(existing, nil)
	items.On("UpdateItem", mock.Anything, mock.MatchedBy(func(item *models.Item) bool {
		return item.ModerationStatus == models.StatusPending && item.Title == "Bike, barely used"
	})).Return(nil)
	classifier.On("Classify", mock.Anything, "Bike, barely used\ndesc").Return(&models.ScoreReport{MaxScore: 0.5})
	modRepo.On("Record", mock.Anything, mock.Anything).Return(nil)

	title := "Bike, barely used"
	item, result, err := svc.Update(context.Background(), "user-1", 42, &models.ItemUpdateRequest{Title: &title})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, models.StatusFlagged, item.ModerationStatus)
	// The shadow copy keeps the previously approved version.
	assert.Equal(t, "Bike", item.DisplayTitle)
	items.AssertExpectations(t)
}

func TestItemUpdate_PriceChangeSkipsModeration(t *testing.T) {
	items := new(MockItemRepository)
	classifier := new(MockClassifier)
	modRepo := new(MockModerationRepository)
	svc := newItemService(items, classifier, modRepo, nil)

	existing := &models.Item{
		ID: 42, UserID: "user-1",
		Title: "Bike", DisplayTitle: "Bike",
		Price:            120,
		ModerationStatus: models.StatusApproved,
	}
	items.On("GetItemByID", mock.Anything, int64(42)).Return(existing, nil)
	items.On("UpdateItem", mock.Anything, mock.Anything).Return(nil)

	price := 99.0
	item, result, err := svc.Update(context.Background(), "user-1", 42, &models.ItemUpdateRequest{Price: &price})

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, models.StatusApproved, item.ModerationStatus)
	assert.Equal(t, 99.0, item.Price)
	classifier.AssertNotCalled(t, "Classify")
	modRepo.AssertNotCalled(t, "Record")
}

func TestItemUpdate_SameTitleSkipsModeration(t *testing.T) {
	items := new(MockItemRepository)
	classifier := new(MockClassifier)
	modRepo := new(MockModerationRepository)
	svc := newItemService(items, classifier, modRepo, nil)

	existing := &models.Item{
		ID: 42, UserID: "user-1",
		Title: "Bike", DisplayTitle: "Bike",
		ModerationStatus: models.StatusApproved,
	}
	items.On("GetItemByID", mock.Anything, int64(42)).Return(existing, nil)
	items.On("UpdateItem", mock.Anything, mock.Anything).Return(nil)

	title := "Bike"
	_, result, err := svc.Update(context.Background(), "user-1", 42, &models.ItemUpdateRequest{Title: &title})

	require.NoError(t, err)
	assert.Nil(t, result)
	classifier.AssertNotCalled(t, "Classify")
}

func TestItemUpdate_NotOwner(t *testing.T) {
	items := new(MockItemRepository)
	svc := newItemService(items, new(MockClassifier), new(MockModerationRepository), nil)

	items.On("GetItemByID", mock.Anything, int64(42)).Return(&models.Item{ID: 42, UserID: "owner"}, nil)

	title := "Hijacked"
	_, _, err := svc.Update(context.Background(), "intruder", 42, &models.ItemUpdateRequest{Title: &title})

	assert.ErrorIs(t, err, ErrPermissionDenied)
	items.AssertNotCalled(t, "UpdateItem")
}

func TestItemDelete_NotOwner(t *testing.T) {
	items := new(MockItemRepository)
	svc := newItemService(items, new(MockClassifier), new(MockModerationRepository), nil)

	items.On("GetItemByID", mock.Anything, int64(42)).Return(&models.Item{ID: 42, UserID: "owner"}, nil)

	err := svc.Delete(context.Background(), "intruder", 42)

	assert.ErrorIs(t, err, ErrPermissionDenied)
	items.AssertNotCalled(t, "DeleteItem")
}

func TestToggleFavorite_NotifiesOwner(t *testing.T) {
	items := new(MockItemRepository)
	notifier := newMockNotifier()
	svc := newItemService(items, new(MockClassifier), new(MockModerationRepository), notifier)

	items.On("ToggleFavorite", mock.Anything, int64(42), "fan-1").Return(true, nil)
	items.On("GetItemByID", mock.Anything, int64(42)).Return(&models.Item{ID: 42, UserID: "owner", Title: "Bike"}, nil)

	favorited, err := svc.ToggleFavorite(context.Background(), 42, "fan-1")

	require.NoError(t, err)
	assert.True(t, favorited)

	select {
	case <-notifier.called:
	case <-time.After(time.Second):
		t.Fatal("expected owner notification")
	}
	notifier.mu.Lock()
	assert.Equal(t, "owner", notifier.ownerID)
	notifier.mu.Unlock()
}

func TestToggleFavorite_NoSelfNotification(t *testing.T) {
	items := new(MockItemRepository)
	notifier := newMockNotifier()
	svc := newItemService(items, new(MockClassifier), new(MockModerationRepository), notifier)

	items.On("ToggleFavorite", mock.Anything, int64(42), "owner").Return(true, nil)
	items.On("GetItemByID", mock.Anything, int64(42)).Return(&models.Item{ID: 42, UserID: "owner"}, nil)

	_, err := svc.ToggleFavorite(context.Background(), 42, "owner")
	require.NoError(t, err)

	select {
	case <-notifier.called:
		t.Fatal("owner must not be notified about their own favorite")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestToggleFavorite_UnfavoriteSkipsNotification(t *testing.T) {
	items := new(MockItemRepository)
	notifier := newMockNotifier()
	svc := newItemService(items, new(MockClassifier), new(MockModerationRepository), notifier)

	items.On("ToggleFavorite", mock.Anything, int64(42), "fan-1").Return(false, nil)

	favorited, err := svc.ToggleFavorite(context.Background(), 42, "fan-1")

	require.NoError(t, err)
	assert.False(t, favorited)
	items.AssertNotCalled(t, "GetItemByID")
}

func TestItemList_FiltersHiddenItems(t *testing.T) {
	items := new(MockItemRepository)
	svc := newItemService(items, new(MockClassifier), new(MockModerationRepository), nil)

	items.On("ListItems", mock.Anything, 12, 0).Return([]*models.Item{
		{ID: 1, UserID: "a", Title: "Visible", DisplayTitle: "Visible", ModerationStatus: models.StatusApproved},
		{ID: 2, UserID: "b", Title: "Never approved", ModerationStatus: models.StatusPending},
		{ID: 3, UserID: "c", Title: "Edited", DisplayTitle: "Old title", ModerationStatus: models.StatusFlagged},
	}, nil)

	views, err := svc.List(context.Background(), "viewer", 0, 0)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Visible", views[0].Title)
	assert.Equal(t, "Old title", views[1].Title)
}
