package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"unipick/backend/internal/models"
)

var (
	// ErrNotFound is returned when a referenced log entry or content row
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidContentType is returned when a content type outside the
	// known set reaches a status-update call. It indicates a caller bug,
	// not a runtime condition.
	ErrInvalidContentType = errors.New("invalid content type")
)

const itemColumns = `id, user_id, title, description, price, images, location_name, latitude, longitude,
	view_count, display_title, display_description, moderation_status, moderation_log_id, created_at, updated_at`

const profileColumns = `id, email, username, full_name, bio, avatar_url, phone, campus, university,
	notification_email, show_phone, role, display_username, display_full_name, display_bio,
	moderation_status, moderation_log_id, created_at, updated_at`

type ModerationRepository interface {
	Record(ctx context.Context, log *models.ModerationLog) error
	ApplyReview(ctx context.Context, logID int64, reviewerID string, decision models.ModerationStatus, note string) (*models.ModerationLog, error)
	ListQueue(ctx context.Context, status models.ModerationStatus, contentType models.ContentType, limit, offset int) ([]*models.QueueEntry, error)
	GetLogDetail(ctx context.Context, logID int64) (*models.LogDetail, error)
	Stats(ctx context.Context) (*models.ModerationStats, error)
}

type moderationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewModerationRepository(db *sqlx.DB, logger *zap.Logger) ModerationRepository {
	return &moderationRepository{db: db, logger: logger}
}

// contentStatusUpdate maps a content type to the fixed UPDATE statement for
// its table. Table names are never built from input.
func contentStatusUpdate(t models.ContentType) (string, error) {
	switch t {
	case models.ContentTypeItem:
		return `UPDATE items SET moderation_status = $1, moderation_log_id = $2, updated_at = NOW() WHERE id = $3::bigint`, nil
	case models.ContentTypeProfile:
		return `UPDATE profiles SET moderation_status = $1, moderation_log_id = $2, updated_at = NOW() WHERE id = $3::uuid`, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidContentType, t)
	}
}

// contentApprovalSync maps a content type to the statement that copies the
// draft fields into the shadow copy on an automated approval.
func contentApprovalSync(t models.ContentType) string {
	switch t {
	case models.ContentTypeItem:
		return `UPDATE items SET display_title = title, display_description = description WHERE id = $1::bigint`
	case models.ContentTypeProfile:
		return `UPDATE profiles SET display_username = username, display_full_name = full_name, display_bio = bio WHERE id = $1::uuid`
	default:
		return ""
	}
}

// Record persists a new ledger entry and points the content row at it.
// Both writes commit together or not at all, so moderation_log_id can never
// reference an entry absent from storage. An approved outcome also syncs the
// draft fields into the shadow copy within the same transaction.
func (r *moderationRepository) Record(ctx context.Context, log *models.ModerationLog) error {
	updateQuery, err := contentStatusUpdate(log.ContentType)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `INSERT INTO moderation_logs (content_type, content_id, user_id, content_text, status, flagged, categories, scores)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	                RETURNING id, created_at, updated_at`
	err = tx.QueryRowxContext(ctx, insertQuery,
		log.ContentType, log.ContentID, log.UserID, log.ContentText,
		log.Status, log.Flagged, log.Categories, log.Scores,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert moderation log: %w", err)
	}

	if _, err := tx.ExecContext(ctx, updateQuery, log.Status, log.ID, log.ContentID); err != nil {
		return fmt.Errorf("failed to update content status: %w", err)
	}

	if log.Status == models.StatusApproved {
		if _, err := tx.ExecContext(ctx, contentApprovalSync(log.ContentType), log.ContentID); err != nil {
			return fmt.Errorf("failed to sync approved content: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit moderation record: %w", err)
	}

	return nil
}

// ApplyReview updates the ledger entry in place and applies the matching
// visibility transition to the content row within the same transaction.
func (r *moderationRepository) ApplyReview(ctx context.Context, logID int64, reviewerID string, decision models.ModerationStatus, note string) (*models.ModerationLog, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var log models.ModerationLog
	updateLog := `UPDATE moderation_logs
	              SET status = $1, reviewed_by = $2, reviewed_at = NOW(), review_note = $3, updated_at = NOW()
	              WHERE id = $4
	              RETURNING id, content_type, content_id, user_id, content_text, status, flagged,
	                        categories, scores, reviewed_by, reviewed_at, review_note, created_at, updated_at`
	err = tx.QueryRowxContext(ctx, updateLog, decision, reviewerID, note, logID).StructScan(&log)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("moderation log %d: %w", logID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update moderation log: %w", err)
	}

	switch log.ContentType {
	case models.ContentTypeItem:
		err = r.reviewItem(ctx, tx, &log, decision)
	case models.ContentTypeProfile:
		err = r.reviewProfile(ctx, tx, &log, decision)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, log.ContentType)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	return &log, nil
}

func (r *moderationRepository) reviewItem(ctx context.Context, tx *sqlx.Tx, log *models.ModerationLog, decision models.ModerationStatus) error {
	var item models.Item
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1::bigint FOR UPDATE`
	err := tx.GetContext(ctx, &item, query, log.ContentID)
	if errors.Is(err, sql.ErrNoRows) {
		// Content deleted since the log was written. The review of the log
		// itself still stands.
		r.logger.Warn("Reviewed item no longer exists", zap.String("content_id", log.ContentID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load item for review: %w", err)
	}

	if decision == models.StatusApproved {
		item.ApplyApproval()
	} else {
		item.ApplyRejection()
	}

	update := `UPDATE items
	           SET title = $1, description = $2, display_title = $3, display_description = $4,
	               moderation_status = $5, moderation_log_id = $6, updated_at = NOW()
	           WHERE id = $7`
	if _, err := tx.ExecContext(ctx, update,
		item.Title, item.Description, item.DisplayTitle, item.DisplayDescription,
		item.ModerationStatus, log.ID, item.ID); err != nil {
		return fmt.Errorf("failed to apply item review: %w", err)
	}
	return nil
}

func (r *moderationRepository) reviewProfile(ctx context.Context, tx *sqlx.Tx, log *models.ModerationLog, decision models.ModerationStatus) error {
	var profile models.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1::uuid FOR UPDATE`
	err := tx.GetContext(ctx, &profile, query, log.ContentID)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn("Reviewed profile no longer exists", zap.String("content_id", log.ContentID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load profile for review: %w", err)
	}

	if decision == models.StatusApproved {
		profile.ApplyApproval()
	} else {
		profile.ApplyRejection()
	}

	update := `UPDATE profiles
	           SET username = $1, full_name = $2, bio = $3,
	               display_username = $4, display_full_name = $5, display_bio = $6,
	               moderation_status = $7, moderation_log_id = $8, updated_at = NOW()
	           WHERE id = $9::uuid`
	if _, err := tx.ExecContext(ctx, update,
		profile.Username, profile.FullName, profile.Bio,
		profile.DisplayUsername, profile.DisplayFullName, profile.DisplayBio,
		profile.ModerationStatus, log.ID, profile.ID); err != nil {
		return fmt.Errorf("failed to apply profile review: %w", err)
	}
	return nil
}

// ListQueue returns ledger entries newest-first, each enriched with a
// snapshot of the underlying content. A failed enrichment degrades that
// entry only, never the batch.
func (r *moderationRepository) ListQueue(ctx context.Context, status models.ModerationStatus, contentType models.ContentType, limit, offset int) ([]*models.QueueEntry, error) {
	var logs []models.ModerationLog
	var err error

	if contentType != "" {
		query := `SELECT * FROM moderation_logs WHERE status = $1 AND content_type = $2
		          ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		err = r.db.SelectContext(ctx, &logs, query, status, contentType, limit, offset)
	} else {
		query := `SELECT * FROM moderation_logs WHERE status = $1
		          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		err = r.db.SelectContext(ctx, &logs, query, status, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query review queue: %w", err)
	}

	entries := make([]*models.QueueEntry, 0, len(logs))
	for _, log := range logs {
		entry := &models.QueueEntry{Log: log}
		switch log.ContentType {
		case models.ContentTypeItem:
			var snap models.ItemSnapshot
			var images []string
			row := r.db.QueryRowxContext(ctx,
				`SELECT title, price, images FROM items WHERE id = $1::bigint`, log.ContentID)
			if err := row.Scan(&snap.Title, &snap.Price, pq.Array(&images)); err != nil {
				r.logger.Warn("Failed to enrich queue entry",
					zap.Int64("log_id", log.ID), zap.Error(err))
				entry.Item = &models.ItemSnapshot{}
			} else {
				snap.Images = images
				entry.Item = &snap
			}
		case models.ContentTypeProfile:
			var snap models.ProfileSnapshot
			row := r.db.QueryRowxContext(ctx,
				`SELECT email, avatar_url, bio FROM profiles WHERE id = $1::uuid`, log.ContentID)
			if err := row.Scan(&snap.Email, &snap.AvatarURL, &snap.Bio); err != nil {
				r.logger.Warn("Failed to enrich queue entry",
					zap.Int64("log_id", log.ID), zap.Error(err))
				entry.Profile = &models.ProfileSnapshot{}
			} else {
				entry.Profile = &snap
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// GetLogDetail returns one ledger entry with the author and reviewer emails
// joined in.
func (r *moderationRepository) GetLogDetail(ctx context.Context, logID int64) (*models.LogDetail, error) {
	var detail models.LogDetail
	query := `SELECT m.*,
	                 COALESCE(p.email, '') AS user_email,
	                 COALESCE(rev.email, '') AS reviewer_email
	          FROM moderation_logs m
	          LEFT JOIN profiles p ON m.user_id = p.id::text
	          LEFT JOIN profiles rev ON m.reviewed_by = rev.id::text
	          WHERE m.id = $1`
	err := r.db.GetContext(ctx, &detail, query, logID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("moderation log %d: %w", logID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation log: %w", err)
	}
	return &detail, nil
}

// Stats returns the per-outcome ledger counts.
func (r *moderationRepository) Stats(ctx context.Context) (*models.ModerationStats, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM moderation_logs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation stats: %w", err)
	}
	defer rows.Close()

	stats := &models.ModerationStats{}
	for rows.Next() {
		var status models.ModerationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan moderation stats: %w", err)
		}
		switch status {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusApproved:
			stats.Approved = count
		case models.StatusFlagged:
			stats.Flagged = count
		case models.StatusRejected:
			stats.Rejected = count
		}
		stats.Total += count
	}

	return stats, rows.Err()
}
