package models

import "time"

// Profile represents a row of the 'profiles' table.
//
// Username, FullName and Bio are the owner's draft values and may be edited
// at will. The Display* columns hold the last approved copy and are only
// written by the approval transition, never by the owner directly. Other
// users are served the Display* values while an edit awaits review.
type Profile struct {
	ID                string           `db:"id" json:"id"`
	Email             string           `db:"email" json:"email"`
	Username          string           `db:"username" json:"username"`
	FullName          string           `db:"full_name" json:"full_name"`
	Bio               string           `db:"bio" json:"bio"`
	AvatarURL         string           `db:"avatar_url" json:"avatar_url"`
	Phone             string           `db:"phone" json:"phone"`
	Campus            string           `db:"campus" json:"campus"`
	University        string           `db:"university" json:"university"`
	NotificationEmail bool             `db:"notification_email" json:"notification_email"`
	ShowPhone         bool             `db:"show_phone" json:"show_phone"`
	Role              string           `db:"role" json:"role"`
	DisplayUsername   string           `db:"display_username" json:"-"`
	DisplayFullName   string           `db:"display_full_name" json:"-"`
	DisplayBio        string           `db:"display_bio" json:"-"`
	ModerationStatus  ModerationStatus `db:"moderation_status" json:"moderation_status"`
	ModerationLogID   *int64           `db:"moderation_log_id" json:"moderation_log_id,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// HasPublicVersion reports whether the profile ever passed an approval,
// i.e. the shadow copy holds something other users may be shown.
func (p *Profile) HasPublicVersion() bool {
	return p.DisplayUsername != "" || p.DisplayFullName != "" || p.DisplayBio != ""
}

// ApplyApproval copies the draft fields into the shadow copy and marks the
// profile approved. Applying it twice is a no-op the second time.
func (p *Profile) ApplyApproval() {
	p.DisplayUsername = p.Username
	p.DisplayFullName = p.FullName
	p.DisplayBio = p.Bio
	p.ModerationStatus = StatusApproved
}

// ApplyRejection overwrites the draft fields with the last approved shadow
// copy. The status stays rejected, not approved, so the owner can tell a
// rejection happened even though the content now matches what is shown publicly.
func (p *Profile) ApplyRejection() {
	p.Username = p.DisplayUsername
	p.FullName = p.DisplayFullName
	p.Bio = p.DisplayBio
	p.ModerationStatus = StatusRejected
}

// RevertToApproved is the owner's self-service rollback: it pulls the shadow
// copy back into the draft without waiting for a rejection cycle. When no
// approval ever happened there is nothing to restore and the profile goes
// back to pending.
func (p *Profile) RevertToApproved() {
	p.Username = p.DisplayUsername
	p.FullName = p.DisplayFullName
	p.Bio = p.DisplayBio
	if p.HasPublicVersion() {
		p.ModerationStatus = StatusApproved
	} else {
		p.ModerationStatus = StatusPending
	}
}

// ModerationText builds the text blob submitted to the classifier.
func (p *Profile) ModerationText() string {
	return p.FullName + "\n" + p.Bio + "\n" + p.Username
}
