package service

import "unipick/backend/internal/models"

// Moderation thresholds. Only confidently clean content auto-publishes;
// everything else, classifier outages included, lands in the human review
// queue instead of defaulting open.
const (
	// ScoreRejectThreshold is the max category score above which content is
	// auto-rejected.
	ScoreRejectThreshold = 0.8
	// ScoreFlagThreshold is the max category score above which content is
	// held for human review.
	ScoreFlagThreshold = 0.3
)

// ResolveStatus maps a classifier report to a moderation outcome. It never
// returns pending: every automated pass concludes in a state a human queue
// can act on. First match wins, so a failed classification is flagged for
// review even though fail-closed reports also carry flagged=true.
func ResolveStatus(report *models.ScoreReport) models.ModerationStatus {
	if report.Err != "" {
		return models.StatusFlagged
	}
	if report.MaxScore > ScoreRejectThreshold || report.Flagged {
		return models.StatusRejected
	}
	if report.MaxScore > ScoreFlagThreshold {
		return models.StatusFlagged
	}
	return models.StatusApproved
}
