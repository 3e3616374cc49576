package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unipick/backend/internal/models"
)

func approvedItem() *models.Item {
	return &models.Item{
		ID:                 1,
		UserID:             "owner-1",
		Title:              "Bike",
		Description:        "Good condition",
		DisplayTitle:       "Bike",
		DisplayDescription: "Good condition",
		ModerationStatus:   models.StatusApproved,
	}
}

func TestEffectiveItem_OwnerSeesDraft(t *testing.T) {
	item := approvedItem()
	item.Title = "Bike (edited)"
	item.ModerationStatus = models.StatusPending

	view, err := EffectiveItem(item, "owner-1")

	require.NoError(t, err)
	assert.Equal(t, "Bike (edited)", view.Title)
	assert.Equal(t, models.StatusPending, view.ModerationStatus)
}

func TestEffectiveItem_PendingEditShowsShadowToOthers(t *testing.T) {
	item := approvedItem()
	item.Title = "Bike (edited)"
	item.ModerationStatus = models.StatusPending

	view, err := EffectiveItem(item, "someone-else")

	require.NoError(t, err)
	assert.Equal(t, "Bike", view.Title)
	assert.Equal(t, "Good condition", view.Description)
	assert.Equal(t, models.StatusApproved, view.ModerationStatus)
}

func TestEffectiveItem_RejectedDegradesToApprovedForOthers(t *testing.T) {
	item := approvedItem()
	item.ModerationStatus = models.StatusRejected

	view, err := EffectiveItem(item, "someone-else")

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, view.ModerationStatus)
	assert.Equal(t, "Bike", view.Title)
}

func TestEffectiveItem_NeverApprovedHiddenFromOthers(t *testing.T) {
	item := &models.Item{
		ID:               2,
		UserID:           "owner-1",
		Title:            "Fresh listing",
		ModerationStatus: models.StatusPending,
	}

	_, err := EffectiveItem(item, "someone-else")
	assert.ErrorIs(t, err, ErrContentHidden)

	// Anonymous viewers get the same treatment.
	_, err = EffectiveItem(item, "")
	assert.ErrorIs(t, err, ErrContentHidden)

	// The owner still sees it.
	view, err := EffectiveItem(item, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Fresh listing", view.Title)
	assert.Equal(t, models.StatusPending, view.ModerationStatus)
}

func TestEffectiveProfile_PhoneGatedByShowPhone(t *testing.T) {
	profile := &models.Profile{
		ID:               "owner-1",
		Username:         "sam",
		DisplayUsername:  "sam",
		Phone:            "+380501234567",
		ShowPhone:        false,
		ModerationStatus: models.StatusApproved,
	}

	view, err := EffectiveProfile(profile, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, view.Phone)

	profile.ShowPhone = true
	view, err = EffectiveProfile(profile, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, "+380501234567", view.Phone)
}

func TestEffectiveProfile_FlaggedEditShowsShadow(t *testing.T) {
	profile := &models.Profile{
		ID:               "owner-1",
		Username:         "sam_sketchy",
		FullName:         "Sam",
		Bio:              "new bio under review",
		DisplayUsername:  "sam",
		DisplayFullName:  "Sam",
		DisplayBio:       "old bio",
		ModerationStatus: models.StatusFlagged,
	}

	view, err := EffectiveProfile(profile, "someone-else")

	require.NoError(t, err)
	assert.Equal(t, "sam", view.Username)
	assert.Equal(t, "old bio", view.Bio)
	assert.Equal(t, models.StatusApproved, view.ModerationStatus)
}

func TestItemTransitions(t *testing.T) {
	item := &models.Item{Title: "Bike", Description: "desc", ModerationStatus: models.StatusPending}

	// Approval publishes the draft.
	item.ApplyApproval()
	assert.Equal(t, models.StatusApproved, item.ModerationStatus)
	assert.Equal(t, "Bike", item.DisplayTitle)

	// A rejected edit rolls the draft back to the published copy.
	item.Title = "Bike!!!"
	item.ApplyRejection()
	assert.Equal(t, models.StatusRejected, item.ModerationStatus)
	assert.Equal(t, "Bike", item.Title)

	// Approval after rejection converges, repeated approval is a no-op.
	item.ApplyApproval()
	before := *item
	item.ApplyApproval()
	assert.Equal(t, before, *item)
}

func TestItemRevertToApproved(t *testing.T) {
	item := &models.Item{
		Title:              "Bike (edited)",
		DisplayTitle:       "Bike",
		DisplayDescription: "desc",
		ModerationStatus:   models.StatusFlagged,
	}

	item.RevertToApproved()

	assert.Equal(t, "Bike", item.Title)
	assert.Equal(t, models.StatusApproved, item.ModerationStatus)
}

func TestItemRevertWithoutPublicVersion(t *testing.T) {
	item := &models.Item{Title: "Never approved", ModerationStatus: models.StatusRejected}

	item.RevertToApproved()

	// Nothing to roll back to, the item goes back to the review pipeline.
	assert.Empty(t, item.Title)
	assert.Equal(t, models.StatusPending, item.ModerationStatus)
}

func TestProfileTransitions(t *testing.T) {
	profile := &models.Profile{
		Username:         "sam",
		FullName:         "Sam",
		Bio:              "hello",
		ModerationStatus: models.StatusPending,
	}

	profile.ApplyApproval()
	assert.Equal(t, models.StatusApproved, profile.ModerationStatus)
	assert.Equal(t, "sam", profile.DisplayUsername)
	assert.True(t, profile.HasPublicVersion())

	profile.Bio = "spam link here"
	profile.ApplyRejection()
	assert.Equal(t, "hello", profile.Bio)
	assert.Equal(t, models.StatusRejected, profile.ModerationStatus)
}
