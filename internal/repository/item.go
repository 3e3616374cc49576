package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"unipick/backend/internal/models"
)

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	RecordView(ctx context.Context, itemID int64, userID string) (int64, error)
	ToggleFavorite(ctx context.Context, itemID int64, userID string) (bool, error)
	GetItemStats(ctx context.Context, itemID int64, userID string) (*models.ItemStats, error)
	ListFavorites(ctx context.Context, userID string, limit, offset int) ([]*models.Item, error)
	ListViewHistory(ctx context.Context, userID string, limit, offset int) ([]*models.Item, error)
}

type itemRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewItemRepository(db *sqlx.DB, logger *zap.Logger) ItemRepository {
	return &itemRepository{db: db, logger: logger}
}

// prefixColumns qualifies each column of a comma-separated list with a table
// alias, for joined selects.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func (r *itemRepository) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (user_id, title, description, price, images, location_name, latitude, longitude, moderation_status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, view_count, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		item.UserID, item.Title, item.Description, item.Price, item.Images,
		item.LocationName, item.Latitude, item.Longitude, models.StatusPending,
	).Scan(&item.ID, &item.ViewCount, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	item.ModerationStatus = models.StatusPending
	return nil
}

func (r *itemRepository) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (r *itemRepository) ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	var items []*models.Item
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &items, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items
	          SET title = $1, description = $2, price = $3, images = $4, location_name = $5,
	              latitude = $6, longitude = $7, moderation_status = $8, updated_at = NOW()
	          WHERE id = $9
	          RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		item.Title, item.Description, item.Price, item.Images, item.LocationName,
		item.Latitude, item.Longitude, item.ModerationStatus, item.ID,
	).Scan(&item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (r *itemRepository) DeleteItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

// RecordView bumps the item's view counter. The first view by a signed-in
// user creates the history row and increments the counter; repeat views from
// the same user only refresh the timestamp. Anonymous views always count.
// The counter update is a single atomic row update, no in-process locks.
func (r *itemRepository) RecordView(ctx context.Context, itemID int64, userID string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	firstView := true
	if userID != "" {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO view_history (user_id, item_id) VALUES ($1, $2)
			 ON CONFLICT (user_id, item_id) DO NOTHING`, userID, itemID)
		if err != nil {
			return 0, fmt.Errorf("failed to record view history: %w", err)
		}
		inserted, _ := res.RowsAffected()
		firstView = inserted == 1

		if !firstView {
			if _, err := tx.ExecContext(ctx,
				`UPDATE view_history SET viewed_at = NOW() WHERE user_id = $1 AND item_id = $2`,
				userID, itemID); err != nil {
				return 0, fmt.Errorf("failed to refresh view history: %w", err)
			}
		}
	}

	var viewCount int64
	if firstView {
		err = tx.QueryRowxContext(ctx,
			`UPDATE items SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`,
			itemID).Scan(&viewCount)
	} else {
		err = tx.QueryRowxContext(ctx,
			`SELECT view_count FROM items WHERE id = $1`, itemID).Scan(&viewCount)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update view count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit view: %w", err)
	}
	return viewCount, nil
}

// ToggleFavorite adds or removes a favorite and reports the resulting state.
// The unique (user_id, item_id) constraint makes the toggle race-safe.
func (r *itemRepository) ToggleFavorite(ctx context.Context, itemID int64, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowxContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND item_id = $2`, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	if removed, _ := res.RowsAffected(); removed == 1 {
		return false, nil
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, item_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, item_id) DO NOTHING`, userID, itemID); err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return true, nil
}

func (r *itemRepository) GetItemStats(ctx context.Context, itemID int64, userID string) (*models.ItemStats, error) {
	stats := &models.ItemStats{}

	query := `SELECT i.view_count,
	                 (SELECT COUNT(*) FROM favorites f WHERE f.item_id = i.id) AS favorite_count
	          FROM items i WHERE i.id = $1`
	err := r.db.QueryRowxContext(ctx, query, itemID).Scan(&stats.ViewCount, &stats.FavoriteCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item stats: %w", err)
	}

	if userID != "" {
		err = r.db.QueryRowxContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND item_id = $2)`,
			userID, itemID).Scan(&stats.IsFavorited)
		if err != nil {
			return nil, fmt.Errorf("failed to check favorite: %w", err)
		}
	}

	return stats, nil
}

func (r *itemRepository) ListFavorites(ctx context.Context, userID string, limit, offset int) ([]*models.Item, error) {
	var items []*models.Item
	query := `SELECT ` + prefixColumns("i", itemColumns) + `
	          FROM items i
	          JOIN favorites f ON f.item_id = i.id
	          WHERE f.user_id = $1
	          ORDER BY f.created_at DESC
	          LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &items, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return items, nil
}

func (r *itemRepository) ListViewHistory(ctx context.Context, userID string, limit, offset int) ([]*models.Item, error) {
	var items []*models.Item
	query := `SELECT ` + prefixColumns("i", itemColumns) + `
	          FROM items i
	          JOIN view_history v ON v.item_id = i.id
	          WHERE v.user_id = $1
	          ORDER BY v.viewed_at DESC
	          LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &items, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list view history: %w", err)
	}
	return items, nil
}
