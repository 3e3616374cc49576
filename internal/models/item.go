package models

import (
	"time"

	"github.com/lib/pq"
)

// Item represents a row of the 'items' table.
//
// Title and Description are the seller's draft values; DisplayTitle and
// DisplayDescription hold the last approved copy shown to other users while
// an edit awaits review. Price, images and location are not moderated.
type Item struct {
	ID                 int64            `db:"id" json:"id"`
	UserID             string           `db:"user_id" json:"user_id"`
	Title              string           `db:"title" json:"title"`
	Description        string           `db:"description" json:"description"`
	Price              float64          `db:"price" json:"price"`
	Images             pq.StringArray   `db:"images" json:"images"`
	LocationName       string           `db:"location_name" json:"location_name"`
	Latitude           float64          `db:"latitude" json:"latitude"`
	Longitude          float64          `db:"longitude" json:"longitude"`
	ViewCount          int64            `db:"view_count" json:"view_count"`
	DisplayTitle       string           `db:"display_title" json:"-"`
	DisplayDescription string           `db:"display_description" json:"-"`
	ModerationStatus   ModerationStatus `db:"moderation_status" json:"moderation_status"`
	ModerationLogID    *int64           `db:"moderation_log_id" json:"moderation_log_id,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// HasPublicVersion reports whether the item ever passed an approval.
func (i *Item) HasPublicVersion() bool {
	return i.DisplayTitle != ""
}

// ApplyApproval copies the draft fields into the shadow copy and marks the
// item approved.
func (i *Item) ApplyApproval() {
	i.DisplayTitle = i.Title
	i.DisplayDescription = i.Description
	i.ModerationStatus = StatusApproved
}

// ApplyRejection reverts the draft fields to the last approved shadow copy
// while keeping the rejected status visible to the owner.
func (i *Item) ApplyRejection() {
	i.Title = i.DisplayTitle
	i.Description = i.DisplayDescription
	i.ModerationStatus = StatusRejected
}

// RevertToApproved is the owner's self-service rollback to the last approved
// version.
func (i *Item) RevertToApproved() {
	i.Title = i.DisplayTitle
	i.Description = i.DisplayDescription
	if i.HasPublicVersion() {
		i.ModerationStatus = StatusApproved
	} else {
		i.ModerationStatus = StatusPending
	}
}

// ModerationText builds the text blob submitted to the classifier.
func (i *Item) ModerationText() string {
	return i.Title + "\n" + i.Description
}

// Favorite represents a row of the 'favorites' table. (user_id, item_id)
// is unique, which is what makes the toggle race-safe.
type Favorite struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ItemID    int64     `db:"item_id" json:"item_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ViewHistory represents a row of the 'view_history' table. One row per
// (user_id, item_id); repeat views only refresh ViewedAt.
type ViewHistory struct {
	ID       int64     `db:"id" json:"id"`
	UserID   string    `db:"user_id" json:"user_id"`
	ItemID   int64     `db:"item_id" json:"item_id"`
	ViewedAt time.Time `db:"viewed_at" json:"viewed_at"`
}

// ItemStats aggregates the counters shown on an item page.
type ItemStats struct {
	ViewCount     int64 `json:"view_count"`
	FavoriteCount int64 `json:"favorite_count"`
	IsFavorited   bool  `json:"is_favorited"`
}
