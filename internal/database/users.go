package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lendshare/internal/domain"
	"lendshare/internal/models"

	"github.com/mattn/go-sqlite3"
)

// mapConstraint turns a sqlite UNIQUE violation into a Conflict error so
// the duplicate-email rule surfaces with the right kind.
func mapConstraint(err error, msg string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return domain.Conflict("%s", msg)
	}
	return err
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, name) VALUES (?, ?)`
	result, err := db.ExecContext(ctx, query, user.Email, user.Name)
	if err != nil {
		if mapped := mapConstraint(err, "email already in use: "+user.Email); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, name FROM users WHERE id = ?`

	var user models.User
	err := db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET email = ?, name = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, user.Email, user.Name, user.ID)
	if err != nil {
		if mapped := mapConstraint(err, "email already in use: "+user.Email); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
