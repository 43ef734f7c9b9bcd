package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/db"
)

const userColumns = `id, first_name, last_name, email, role, status, password_hash`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.Role, &user.Status, &user.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, db.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by id
func (d *DB) GetUser(ctx context.Context, id string) (model.User, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address
func (d *DB) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// InsertUser inserts a new user record
func (d *DB) InsertUser(ctx context.Context, user model.User) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email, role, status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.FirstName, user.LastName, user.Email, user.Role, user.Status, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// ListActiveWorkers retrieves every active user eligible to cover shifts
func (d *DB) ListActiveWorkers(ctx context.Context) ([]model.User, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE status = 'active'
		ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
			&user.Role, &user.Status, &user.PasswordHash); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
