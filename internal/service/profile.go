package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"unipick/backend/internal/models"
	"unipick/backend/internal/repository"
)

// ProfileService owns the profile lifecycle: partial updates, the moderation
// pass on edits of moderated fields, and the public read contract.
type ProfileService struct {
	profiles   repository.ProfileRepository
	moderation *ModerationService
	logger     *zap.Logger
}

func NewProfileService(profiles repository.ProfileRepository, moderation *ModerationService, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		moderation: moderation,
		logger:     logger,
	}
}

// GetOwn returns the caller's own profile, creating an empty pending row on
// first contact with the backend.
func (s *ProfileService) GetOwn(ctx context.Context, userID, email string) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.profiles.EnsureProfile(ctx, userID, email)
	}
	return profile, err
}

// UpdateOwn applies a partial profile update. Edits of username, full name
// or bio reset the profile to pending and cost a fresh moderation pass;
// contact and preference fields are exempt.
func (s *ProfileService) UpdateOwn(ctx context.Context, userID string, req *models.ProfileUpdateRequest) (*models.Profile, *ModerationResult, error) {
	if req.Username == nil && req.FullName == nil && req.Bio == nil &&
		req.Phone == nil && req.Campus == nil && req.University == nil &&
		req.NotificationEmail == nil && req.ShowPhone == nil {
		return nil, nil, ErrEmptyUpdate
	}

	profile, err := s.profiles.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	sensitive := false
	if req.Username != nil && *req.Username != profile.Username {
		profile.Username = *req.Username
		sensitive = true
	}
	if req.FullName != nil && *req.FullName != profile.FullName {
		profile.FullName = *req.FullName
		sensitive = true
	}
	if req.Bio != nil && *req.Bio != profile.Bio {
		profile.Bio = *req.Bio
		sensitive = true
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Campus != nil {
		profile.Campus = *req.Campus
	}
	if req.University != nil {
		profile.University = *req.University
	}
	if req.NotificationEmail != nil {
		profile.NotificationEmail = *req.NotificationEmail
	}
	if req.ShowPhone != nil {
		profile.ShowPhone = *req.ShowPhone
	}

	if sensitive {
		profile.ModerationStatus = models.StatusPending
	}

	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, nil, err
	}

	if !sensitive {
		return profile, nil, nil
	}

	result, err := s.moderation.Moderate(ctx, models.ContentTypeProfile,
		profile.ID, userID, profile.ModerationText())
	if err != nil {
		return nil, nil, err
	}

	profile.ModerationStatus = result.Status
	profile.ModerationLogID = &result.LogID
	if result.Status == models.StatusApproved {
		profile.ApplyApproval()
	}

	return profile, result, nil
}

// Revert is the owner's self-service rollback: pull the last approved shadow
// copy back into the draft without waiting for a rejection cycle.
func (s *ProfileService) Revert(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.RevertToApproved()
	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("Profile reverted to approved version", zap.String("profile_id", userID))
	return profile, nil
}

// GetPublic returns another user's profile reduced to the viewer's effective
// fields.
func (s *ProfileService) GetPublic(ctx context.Context, profileID, viewerID string) (*ProfileView, error) {
	profile, err := s.profiles.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return EffectiveProfile(profile, viewerID)
}
