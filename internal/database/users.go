package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"maskan/internal/domain"
	"maskan/internal/models"

	"github.com/shopspring/decimal"
)

func getUser(ctx context.Context, q querier, id int64) (*models.User, error) {
	query := `SELECT id, first_name, last_name, phone, role, balance, created_at, updated_at
              FROM users WHERE id = ?`
	var (
		u     models.User
		last  sql.NullString
		phone sql.NullString
	)
	err := q.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.FirstName, &last, &phone, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.LastName = last.String
	u.Phone = phone.String
	return &u, nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return getUser(ctx, db.DB, id)
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (first_name, last_name, phone, role, balance, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		user.FirstName, user.LastName, user.Phone, user.Role, user.Balance, now, now)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// SeedUsers upserts users referenced by the apartments seed. Balances of
// existing users are never touched.
func (db *DB) SeedUsers(ctx context.Context, users []models.User) error {
	query := `INSERT INTO users (id, first_name, last_name, phone, role, balance, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                first_name = excluded.first_name,
                last_name = excluded.last_name,
                phone = excluded.phone,
                role = excluded.role,
                updated_at = excluded.updated_at`
	now := time.Now()
	for i := range users {
		u := &users[i]
		role := u.Role
		if role == "" {
			role = models.RoleOwner
		}
		if _, err := db.ExecContext(ctx, query,
			u.ID, u.FirstName, u.LastName, u.Phone, role, u.Balance, now, now); err != nil {
			return fmt.Errorf("failed to seed user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (t *Tx) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return getUser(ctx, t.tx, id)
}

// UpdateUserBalance overwrites the stored balance. Callers compute the new
// value from the balance read inside the same unit of work.
func (t *Tx) UpdateUserBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	query := `UPDATE users SET balance = ?, updated_at = ? WHERE id = ?`
	result, err := t.tx.ExecContext(ctx, query, balance, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user balance: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
