package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lendshare/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (description, requester_id, created) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		request.Description, request.RequesterID, request.Created.UTC())
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created FROM requests WHERE id = ?`

	var request models.ItemRequest
	err := db.QueryRowContext(ctx, query, id).Scan(
		&request.ID, &request.Description, &request.RequesterID, &request.Created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &request, nil
}

func (db *DB) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created FROM requests
              WHERE requester_id = ? ORDER BY created DESC`
	return db.queryRequests(ctx, query, requesterID)
}

func (db *DB) ListRequestsFromOthers(ctx context.Context, requesterID int64, offset, limit int) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created FROM requests
              WHERE requester_id != ? ORDER BY created DESC LIMIT ? OFFSET ?`
	return db.queryRequests(ctx, query, requesterID, limit, offset)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		var request models.ItemRequest
		if err := rows.Scan(
			&request.ID, &request.Description, &request.RequesterID, &request.Created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, &request)
	}
	return requests, rows.Err()
}
