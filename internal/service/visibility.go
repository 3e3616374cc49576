package service

import (
	"time"

	"unipick/backend/internal/models"
)

// ProfileView is the effective field set a given viewer is allowed to see.
type ProfileView struct {
	ID               string                  `json:"id"`
	Username         string                  `json:"username"`
	FullName         string                  `json:"full_name"`
	Bio              string                  `json:"bio"`
	AvatarURL        string                  `json:"avatar_url"`
	Phone            string                  `json:"phone,omitempty"`
	Campus           string                  `json:"campus"`
	University       string                  `json:"university"`
	ModerationStatus models.ModerationStatus `json:"moderation_status"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ItemView is the effective field set of an item for a given viewer.
type ItemView struct {
	ID               int64                   `json:"id"`
	UserID           string                  `json:"user_id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Price            float64                 `json:"price"`
	Images           []string                `json:"images"`
	LocationName     string                  `json:"location_name"`
	Latitude         float64                 `json:"latitude"`
	Longitude        float64                 `json:"longitude"`
	ViewCount        int64                   `json:"view_count"`
	ModerationStatus models.ModerationStatus `json:"moderation_status"`
	CreatedAt        time.Time               `json:"created_at"`
}

// EffectiveProfile applies the visibility contract: the owner always sees
// their own draft and real status; everyone else sees the last approved
// shadow copy while an edit is pending or flagged, and a rejected profile
// degrades to approved in the response since the shadow already passed
// review. Content that never passed an approval is hidden from non-owners.
func EffectiveProfile(p *models.Profile, viewerID string) (*ProfileView, error) {
	view := &ProfileView{
		ID:         p.ID,
		AvatarURL:  p.AvatarURL,
		Campus:     p.Campus,
		University: p.University,
		CreatedAt:  p.CreatedAt,
	}
	if p.ShowPhone {
		view.Phone = p.Phone
	}

	if viewerID == p.ID {
		view.Username = p.Username
		view.FullName = p.FullName
		view.Bio = p.Bio
		view.ModerationStatus = p.ModerationStatus
		return view, nil
	}

	if p.ModerationStatus == models.StatusApproved {
		// Draft equals shadow by invariant after approval.
		view.Username = p.Username
		view.FullName = p.FullName
		view.Bio = p.Bio
		view.ModerationStatus = models.StatusApproved
		return view, nil
	}

	if !p.HasPublicVersion() {
		return nil, ErrContentHidden
	}

	view.Username = p.DisplayUsername
	view.FullName = p.DisplayFullName
	view.Bio = p.DisplayBio
	view.ModerationStatus = models.StatusApproved
	return view, nil
}

// EffectiveItem applies the same visibility contract to an item.
func EffectiveItem(i *models.Item, viewerID string) (*ItemView, error) {
	view := &ItemView{
		ID:           i.ID,
		UserID:       i.UserID,
		Price:        i.Price,
		Images:       []string(i.Images),
		LocationName: i.LocationName,
		Latitude:     i.Latitude,
		Longitude:    i.Longitude,
		ViewCount:    i.ViewCount,
		CreatedAt:    i.CreatedAt,
	}

	if viewerID == i.UserID {
		view.Title = i.Title
		view.Description = i.Description
		view.ModerationStatus = i.ModerationStatus
		return view, nil
	}

	if i.ModerationStatus == models.StatusApproved {
		view.Title = i.Title
		view.Description = i.Description
		view.ModerationStatus = models.StatusApproved
		return view, nil
	}

	if !i.HasPublicVersion() {
		return nil, ErrContentHidden
	}

	view.Title = i.DisplayTitle
	view.Description = i.DisplayDescription
	view.ModerationStatus = models.StatusApproved
	return view, nil
}
