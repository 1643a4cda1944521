package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lendshare/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, request_id`

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, available, owner_id, request_id)
              VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	return db.queryItem(ctx, query, id)
}

func (db *DB) GetItemByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ? AND owner_id = ?`
	return db.queryItem(ctx, query, id, ownerID)
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id`
	return db.queryItems(ctx, query, ownerID)
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ?, request_id = ?
              WHERE id = ?`
	_, err := db.ExecContext(ctx, query,
		item.Name, item.Description, item.Available, item.RequestID, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (db *DB) DeleteItemByOwner(ctx context.Context, id, ownerID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// SearchItems matches available items whose name or description contains
// the text, case-insensitively.
func (db *DB) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1 AND (lower(name) LIKE ? OR lower(description) LIKE ?)
              ORDER BY id`
	return db.queryItems(ctx, query, pattern, pattern)
}

func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	marks, args := placeholders(requestIDs)
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id IN (` + marks + `) ORDER BY id`
	return db.queryItems(ctx, query, args...)
}

func (db *DB) queryItem(ctx context.Context, query string, args ...any) (*models.Item, error) {
	var item models.Item
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&item.ID, &item.Name, &item.Description, &item.Available, &item.OwnerID, &item.RequestID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.Available, &item.OwnerID, &item.RequestID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}
