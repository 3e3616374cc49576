package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"unipick/backend/internal/models"
)

type ProfileRepository interface {
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	EnsureProfile(ctx context.Context, id, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	IsAdmin(ctx context.Context, id string) (bool, error)
	GetTelegramChatID(ctx context.Context, id string) (int64, error)
}

type profileRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewProfileRepository(db *sqlx.DB, logger *zap.Logger) ProfileRepository {
	return &profileRepository{db: db, logger: logger}
}

func (r *profileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1::uuid`
	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// EnsureProfile returns the profile for the given auth subject, creating an
// empty pending row on first contact.
func (r *profileRepository) EnsureProfile(ctx context.Context, id, email string) (*models.Profile, error) {
	var profile models.Profile
	query := `INSERT INTO profiles (id, email) VALUES ($1::uuid, $2)
	          ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
	          RETURNING ` + profileColumns
	err := r.db.QueryRowxContext(ctx, query, id, email).StructScan(&profile)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile persists the profile's mutable fields, including the draft
// and shadow copies and the moderation pointer.
func (r *profileRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	query := `UPDATE profiles
	          SET username = $1, full_name = $2, bio = $3, avatar_url = $4, phone = $5,
	              campus = $6, university = $7, notification_email = $8, show_phone = $9,
	              display_username = $10, display_full_name = $11, display_bio = $12,
	              moderation_status = $13, updated_at = NOW()
	          WHERE id = $14::uuid
	          RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		profile.Username, profile.FullName, profile.Bio, profile.AvatarURL, profile.Phone,
		profile.Campus, profile.University, profile.NotificationEmail, profile.ShowPhone,
		profile.DisplayUsername, profile.DisplayFullName, profile.DisplayBio,
		profile.ModerationStatus, profile.ID,
	).Scan(&profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("profile %s: %w", profile.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *profileRepository) IsAdmin(ctx context.Context, id string) (bool, error) {
	var role string
	err := r.db.QueryRowxContext(ctx, `SELECT role FROM profiles WHERE id = $1::uuid`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return role == "admin", nil
}

// GetTelegramChatID returns the owner's linked Telegram chat, 0 when none
// is linked.
func (r *profileRepository) GetTelegramChatID(ctx context.Context, id string) (int64, error) {
	var chatID sql.NullInt64
	err := r.db.QueryRowxContext(ctx,
		`SELECT telegram_chat_id FROM profiles WHERE id = $1::uuid`, id).Scan(&chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get telegram chat id: %w", err)
	}
	return chatID.Int64, nil
}
