package models

// ItemCreateRequest is the payload for creating a listing.
type ItemCreateRequest struct {
	Title        string   `json:"title" binding:"required,min=2,max=100"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	Images       []string `json:"images"`
	LocationName string   `json:"location_name"`
	Latitude     float64  `json:"latitude" binding:"min=-90,max=90"`
	Longitude    float64  `json:"longitude" binding:"min=-180,max=180"`
}

// ItemUpdateRequest is a partial update; nil fields are left untouched.
type ItemUpdateRequest struct {
	Title        *string   `json:"title" binding:"omitempty,min=2,max=100"`
	Description  *string   `json:"description"`
	Price        *float64  `json:"price" binding:"omitempty,gt=0"`
	Images       *[]string `json:"images"`
	LocationName *string   `json:"location_name"`
	Latitude     *float64  `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude    *float64  `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

// ProfileUpdateRequest is a partial profile update; nil fields are left
// untouched.
type ProfileUpdateRequest struct {
	Username          *string `json:"username" binding:"omitempty,min=2,max=50"`
	FullName          *string `json:"full_name" binding:"omitempty,min=2,max=100"`
	Bio               *string `json:"bio" binding:"omitempty,max=500"`
	Phone             *string `json:"phone" binding:"omitempty,max=20"`
	Campus            *string `json:"campus" binding:"omitempty,max=100"`
	University        *string `json:"university" binding:"omitempty,max=100"`
	NotificationEmail *bool   `json:"notification_email"`
	ShowPhone         *bool   `json:"show_phone"`
}

// ReviewRequest is the admin manual-review payload.
type ReviewRequest struct {
	LogID    int64  `json:"log_id" binding:"required"`
	Decision string `json:"decision" binding:"required"`
	Note     string `json:"note"`
}
