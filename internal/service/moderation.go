package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"unipick/backend/internal/cache"
	"unipick/backend/internal/models"
	"unipick/backend/internal/repository"
)

// Classifier abstracts the text classification backend. Implementations
// never fail open: a degraded report carries Err and routes to review.
type Classifier interface {
	Classify(ctx context.Context, text string) *models.ScoreReport
}

// ModerationResult is what a moderation pass returns to the content APIs.
type ModerationResult struct {
	LogID      int64                   `json:"log_id"`
	Status     models.ModerationStatus `json:"status"`
	Flagged    bool                    `json:"flagged"`
	Categories models.CategoryFlags    `json:"categories"`
	MaxScore   float64                 `json:"max_score"`
}

// maxContentTextLen bounds the text snapshot stored with a ledger entry.
// The classifier always sees the full text.
const maxContentTextLen = 1000

// ModerationService ties the classifier, the status resolver and the ledger
// together.
type ModerationService struct {
	classifier Classifier
	repo       repository.ModerationRepository
	cache      *cache.Cache
	logger     *zap.Logger
}

func NewModerationService(classifier Classifier, repo repository.ModerationRepository, c *cache.Cache, logger *zap.Logger) *ModerationService {
	return &ModerationService{
		classifier: classifier,
		repo:       repo,
		cache:      c,
		logger:     logger,
	}
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// Moderate runs one automated pass over the given content: classify, resolve,
// persist a ledger entry and update the content's status atomically.
// Classifier failures are absorbed into a flagged outcome and never surface
// as errors; storage failures bubble after rollback.
func (s *ModerationService) Moderate(ctx context.Context, contentType models.ContentType, contentID, userID, text string) (*ModerationResult, error) {
	if !contentType.Valid() {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidContentType, contentType)
	}

	report := s.classifier.Classify(ctx, text)
	status := ResolveStatus(report)

	log := &models.ModerationLog{
		ContentType: contentType,
		ContentID:   contentID,
		UserID:      userID,
		ContentText: truncate(text, maxContentTextLen),
		Status:      status,
		Flagged:     report.Flagged,
		Categories:  report.Categories,
		Scores:      report.Scores,
	}

	if err := s.repo.Record(ctx, log); err != nil {
		return nil, err
	}

	s.logger.Info("Moderation logged",
		zap.String("content_type", string(contentType)),
		zap.String("content_id", contentID),
		zap.String("status", string(status)),
		zap.Int64("log_id", log.ID))

	return &ModerationResult{
		LogID:      log.ID,
		Status:     status,
		Flagged:    report.Flagged,
		Categories: report.Categories,
		MaxScore:   report.MaxScore,
	}, nil
}

// ManualReview applies an admin decision to a ledger entry and the content
// it points at. The decision is validated before any side effect occurs.
func (s *ModerationService) ManualReview(ctx context.Context, logID int64, reviewerID string, decision models.ModerationStatus, note string) error {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return ErrInvalidDecision
	}

	log, err := s.repo.ApplyReview(ctx, logID, reviewerID, decision, note)
	if err != nil {
		return err
	}

	s.logger.Info("Manual review applied",
		zap.Int64("log_id", log.ID),
		zap.String("decision", string(decision)),
		zap.String("reviewer", reviewerID))

	return nil
}

// ReviewQueue returns enriched ledger entries for the admin queue,
// newest-first.
func (s *ModerationService) ReviewQueue(ctx context.Context, status models.ModerationStatus, contentType models.ContentType, limit, offset int) ([]*models.QueueEntry, error) {
	if status == "" {
		status = models.StatusFlagged
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if contentType != "" && !contentType.Valid() {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidContentType, contentType)
	}
	return s.repo.ListQueue(ctx, status, contentType, limit, offset)
}

// LogDetail returns one ledger entry with author and reviewer context.
func (s *ModerationService) LogDetail(ctx context.Context, logID int64) (*models.LogDetail, error) {
	return s.repo.GetLogDetail(ctx, logID)
}

// Stats returns the per-outcome ledger counts, served from cache when warm.
func (s *ModerationService) Stats(ctx context.Context) (*models.ModerationStats, error) {
	if cached, err := s.cache.GetModerationStats(ctx); err == nil && cached != nil {
		return cached, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetModerationStats(ctx, stats)
	return stats, nil
}
