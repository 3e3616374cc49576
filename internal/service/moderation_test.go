package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"unipick/backend/internal/models"
	"unipick/backend/internal/repository"
)

// MockClassifier is a mock implementation of the Classifier interface
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string) *models.ScoreReport {
	args := m.Called(ctx, text)
	return args.Get(0).(*models.ScoreReport)
}

// MockModerationRepository is a mock implementation of the ModerationRepository interface
type MockModerationRepository struct {
	mock.Mock
}

func (m *MockModerationRepository) Record(ctx context.Context, log *models.ModerationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockModerationRepository) ApplyReview(ctx context.Context, logID int64, reviewerID string, decision models.ModerationStatus, note string) (*models.ModerationLog, error) {
	args := m.Called(ctx, logID, reviewerID, decision, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModerationLog), args.Error(1)
}

func (m *MockModerationRepository) ListQueue(ctx context.Context, status models.ModerationStatus, contentType models.ContentType, limit, offset int) ([]*models.QueueEntry, error) {
	args := m.Called(ctx, status, contentType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QueueEntry), args.Error(1)
}

func (m *MockModerationRepository) GetLogDetail(ctx context.Context, logID int64) (*models.LogDetail, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LogDetail), args.Error(1)
}

func (m *MockModerationRepository) Stats(ctx context.Context) (*models.ModerationStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModerationStats), args.Error(1)
}

func newModerationService(classifier Classifier, repo repository.ModerationRepository) *ModerationService {
	return NewModerationService(classifier, repo, nil, zap.NewNop())
}

func TestModerate_CleanContentApproved(t *testing.T) {
	classifier := new(MockClassifier)
	repo := new(MockModerationRepository)
	svc := newModerationService(classifier, repo)

	classifier.On("Classify", mock.Anything, "selling a bike").Return(&models.ScoreReport{
		Categories: models.CategoryFlags{},
		Scores:     models.CategoryScores{"violence": 0.01},
		MaxScore:   0.01,
	})
	repo.On("Record", mock.Anything, mock.MatchedBy(func(log *models.ModerationLog) bool {
		return log.Status == models.StatusApproved &&
			log.ContentType == models.ContentTypeItem &&
			log.ContentID == "42" &&
			!log.Flagged
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.ModerationLog).ID = 7
	}).Return(nil)

	result, err := svc.Moderate(context.Background(), models.ContentTypeItem, "42", "user-1", "selling a bike")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, result.Status)
	assert.Equal(t, int64(7), result.LogID)
	assert.False(t, result.Flagged)
	repo.AssertExpectations(t)
}

func TestModerate_HighScoreRejected(t *testing.T) {
	classifier := new(MockClassifier)
	repo := new(MockModerationRepository)
	svc := newModerationService(classifier, repo)

	classifier.On("Classify", mock.Anything, mock.Anything).Return(&models.ScoreReport{
		Flagged:    true,
		Categories: models.CategoryFlags{"harassment": true},
		Scores:     models.CategoryScores{"harassment": 0.95},
		MaxScore:   0.95,
	})
	repo.On("Record", mock.Anything, mock.MatchedBy(func(log *models.ModerationLog) bool {
		return log.Status == models.StatusRejected && log.Flagged
	})).Return(nil)

	result, err := svc.Moderate(context.Background(), models.ContentTypeItem, "42", "user-1", "abusive text")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusRejected, result.Status)
	repo.AssertExpectations(t)
}

func TestModerate_ClassifierFailureRoutesToReview(t *testing.T) {
	classifier := new(MockClassifier)
	repo := new(MockModerationRepository)
	svc := newModerationService(classifier, repo)

	// A degraded report must flag the content, never approve or reject it.
	classifier.On("Classify", mock.Anything, mock.Anything).Return(&models.ScoreReport{
		Flagged:    true,
		Categories: models.CategoryFlags{"unavailable": true},
		Scores:     models.CategoryScores{"unavailable": 0.5},
		MaxScore:   0.5,
		Err:        "moderation API returned status 500",
	})
	repo.On("Record", mock.Anything, mock.MatchedBy(func(log *models.ModerationLog) bool {
		return log.Status == models.StatusFlagged
	})).Return(nil)

	result, err := svc.Moderate(context.Background(), models.ContentTypeProfile, "uuid-1", "uuid-1", "some bio")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusFlagged, result.Status)
	repo.AssertExpectations(t)
}

func TestModerate_StorageFailureSurfaces(t *testing.T) {
	classifier := new(MockClassifier)
	repo := new(MockModerationRepository)
	svc := newModerationService(classifier, repo)

	classifier.On("Classify", mock.Anything, mock.Anything).Return(&models.ScoreReport{MaxScore: 0.1})
	repo.On("Record", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	result, err := svc.Moderate(context.Background(), models.ContentTypeItem, "42", "user-1", "text")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestModerate_InvalidContentType(t *testing.T) {
	classifier := new(MockClassifier)
	repo := new(MockModerationRepository)
	svc := newModerationService(classifier, repo)

	result, err := svc.Moderate(context.Background(), "comment", "42", "user-1", "text")

	assert.ErrorIs(t, err, repository.ErrInvalidContentType)
	assert.Nil(t, result)
	classifier.AssertNotCalled(t, "Classify")
	repo.AssertNotCalled(t, "Record")
}

func TestModerate_TruncatesStoredText(t *testing.T) {
	classifier := new(MockClassifier)
	repo := new(MockModerationRepository)
	svc := newModerationService(classifier, repo)

	longText := strings.Repeat("я", 2500)

	// The classifier receives the full text, the ledger keeps a bounded
	// snapshot.
	classifier.On("Classify", mock.Anything, longText).Return(&models.ScoreReport{MaxScore: 0.1})
	repo.On("Record", mock.Anything, mock.MatchedBy(func(log *models.ModerationLog) bool {
		return len([]rune(log.ContentText)) == maxContentTextLen
	})).Return(nil)

	_, err := svc.Moderate(context.Background(), models.ContentTypeItem, "42", "user-1", longText)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestManualReview_InvalidDecision(t *testing.T) {
	repo := new(MockModerationRepository)
	svc := newModerationService(new(MockClassifier), repo)

	for _, decision := range []models.ModerationStatus{models.StatusPending, models.StatusFlagged, "banana"} {
		err := svc.ManualReview(context.Background(), 1, "admin-1", decision, "")
		assert.ErrorIs(t, err, ErrInvalidDecision)
	}
	repo.AssertNotCalled(t, "ApplyReview")
}

func TestManualReview_Applies(t *testing.T) {
	repo := new(MockModerationRepository)
	svc := newModerationService(new(MockClassifier), repo)

	repo.On("ApplyReview", mock.Anything, int64(5), "admin-1", models.StatusApproved, "looks fine").
		Return(&models.ModerationLog{ID: 5, Status: models.StatusApproved}, nil)

	err := svc.ManualReview(context.Background(), 5, "admin-1", models.StatusApproved, "looks fine")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestReviewQueue_Defaults(t *testing.T) {
	repo := new(MockModerationRepository)
	svc := newModerationService(new(MockClassifier), repo)

	// Empty status defaults to flagged, out-of-range paging is clamped.
	repo.On("ListQueue", mock.Anything, models.StatusFlagged, models.ContentType(""), 50, 0).
		Return([]*models.QueueEntry{}, nil)

	entries, err := svc.ReviewQueue(context.Background(), "", "", 0, -3)

	assert.NoError(t, err)
	assert.Empty(t, entries)
	repo.AssertExpectations(t)
}

func TestReviewQueue_InvalidContentType(t *testing.T) {
	repo := new(MockModerationRepository)
	svc := newModerationService(new(MockClassifier), repo)

	_, err := svc.ReviewQueue(context.Background(), models.StatusPending, "message", 10, 0)

	assert.ErrorIs(t, err, repository.ErrInvalidContentType)
	repo.AssertNotCalled(t, "ListQueue")
}
