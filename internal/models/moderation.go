package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ContentType identifies which kind of content a moderation log refers to.
type ContentType string

const (
	ContentTypeItem    ContentType = "item"
	ContentTypeProfile ContentType = "profile"
)

// Valid reports whether the content type is one of the known kinds.
func (t ContentType) Valid() bool {
	return t == ContentTypeItem || t == ContentTypeProfile
}

// ModerationStatus is the moderation outcome of a piece of content.
// "pending" only exists before the first automated pass completes; every
// automated pass concludes in approved, flagged or rejected.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusFlagged  ModerationStatus = "flagged"
	StatusRejected ModerationStatus = "rejected"
)

// CategoryFlags maps a moderation category name to the classifier's boolean flag.
// Stored as JSONB.
type CategoryFlags map[string]bool

func (f CategoryFlags) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

func (f *CategoryFlags) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = CategoryFlags{}
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("cannot scan %T into CategoryFlags", src)
	}
}

// CategoryScores maps a moderation category name to the classifier's score in [0,1].
// Stored as JSONB.
type CategoryScores map[string]float64

func (s CategoryScores) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *CategoryScores) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = CategoryScores{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into CategoryScores", src)
	}
}

// ScoreReport is the normalized result of one classifier call.
// Err is set when the backend was unavailable or the call failed; such
// reports are pre-filled with fail-closed values so content routes to
// human review instead of auto-publishing.
type ScoreReport struct {
	Flagged    bool           `json:"flagged"`
	Categories CategoryFlags  `json:"categories"`
	Scores     CategoryScores `json:"scores"`
	MaxScore   float64        `json:"max_score"`
	Err        string         `json:"error,omitempty"`
}

// ModerationLog is one row of the 'moderation_logs' table: a single
// automated-or-manual moderation decision for a piece of content.
// The content row's moderation_log_id always points at its most recent entry.
type ModerationLog struct {
	ID          int64            `db:"id" json:"id"`
	ContentType ContentType      `db:"content_type" json:"content_type"`
	ContentID   string           `db:"content_id" json:"content_id"`
	UserID      string           `db:"user_id" json:"user_id"`
	ContentText string           `db:"content_text" json:"content_text"`
	Status      ModerationStatus `db:"status" json:"status"`
	Flagged     bool             `db:"flagged" json:"flagged"`
	Categories  CategoryFlags    `db:"categories" json:"categories"`
	Scores      CategoryScores   `db:"scores" json:"scores"`
	ReviewedBy  *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNote  *string          `db:"review_note" json:"review_note,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// ItemSnapshot is the denormalized item context attached to a review-queue
// entry so a reviewer can judge without a second round trip.
type ItemSnapshot struct {
	Title  string   `json:"title"`
	Price  float64  `json:"price"`
	Images []string `json:"images"`
}

// ProfileSnapshot is the denormalized profile context for a review-queue entry.
type ProfileSnapshot struct {
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

// QueueEntry is a moderation log enriched with a snapshot of the underlying
// content. Exactly one of Item/Profile is set, matching Log.ContentType;
// both may be nil when enrichment failed for this entry.
type QueueEntry struct {
	Log     ModerationLog    `json:"log"`
	Item    *ItemSnapshot    `json:"item,omitempty"`
	Profile *ProfileSnapshot `json:"profile,omitempty"`
}

// LogDetail is a ledger entry with author and reviewer emails joined in,
// served by the admin detail endpoint.
type LogDetail struct {
	ModerationLog
	UserEmail     string `db:"user_email" json:"user_email"`
	ReviewerEmail string `db:"reviewer_email" json:"reviewer_email"`
}

// ModerationStats holds per-outcome counts for the admin dashboard.
type ModerationStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Flagged  int `json:"flagged"`
	Rejected int `json:"rejected"`
}
