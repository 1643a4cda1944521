package database

import (
	"context"
	"fmt"

	"lendshare/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		comment.Text, comment.ItemID, comment.AuthorID, comment.Created.UTC())
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

// GetCommentViewsByItems returns each item's comments ordered oldest
// first, with author names resolved.
func (db *DB) GetCommentViewsByItems(ctx context.Context, itemIDs []int64) (map[int64][]models.CommentView, error) {
	result := make(map[int64][]models.CommentView, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	marks, args := placeholders(itemIDs)
	query := `SELECT c.id, c.text, c.item_id, u.name, c.created
              FROM comments c
              JOIN users u ON u.id = c.author_id
              WHERE c.item_id IN (` + marks + `)
              ORDER BY c.created ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var view models.CommentView
		var itemID int64
		if err := rows.Scan(&view.ID, &view.Text, &itemID, &view.AuthorName, &view.Created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		result[itemID] = append(result[itemID], view)
	}
	return result, rows.Err()
}
