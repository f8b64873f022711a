package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"maskan/internal/domain"
	"maskan/internal/models"
)

func getApartment(ctx context.Context, q querier, id int64) (*models.Apartment, error) {
	query := `SELECT id, owner_id, city, address, nightly_price, monthly_price, status, created_at, updated_at
              FROM apartments WHERE id = ?`
	var a models.Apartment
	err := q.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.OwnerID, &a.City, &a.Address, &a.NightlyPrice, &a.MonthlyPrice,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get apartment: %w", err)
	}
	return &a, nil
}

func (db *DB) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	return getApartment(ctx, db.DB, id)
}

func (t *Tx) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	return getApartment(ctx, t.tx, id)
}

func (db *DB) CreateApartment(ctx context.Context, apartment *models.Apartment) error {
	query := `INSERT INTO apartments (owner_id, city, address, nightly_price, monthly_price, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	status := apartment.Status
	if status == "" {
		status = models.ApartmentActive
	}
	result, err := db.ExecContext(ctx, query,
		apartment.OwnerID, apartment.City, apartment.Address,
		apartment.NightlyPrice, apartment.MonthlyPrice, status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create apartment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	apartment.ID = id
	apartment.Status = status
	apartment.CreatedAt = now
	apartment.UpdatedAt = now
	return nil
}

// SeedApartments upserts the apartments shipped in the seed file. Existing
// rows keep their id; prices and status follow the seed.
func (db *DB) SeedApartments(ctx context.Context, apartments []models.Apartment) error {
	query := `INSERT INTO apartments (id, owner_id, city, address, nightly_price, monthly_price, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                owner_id = excluded.owner_id,
                city = excluded.city,
                address = excluded.address,
                nightly_price = excluded.nightly_price,
                monthly_price = excluded.monthly_price,
                status = excluded.status,
                updated_at = excluded.updated_at`
	now := time.Now()
	for i := range apartments {
		a := &apartments[i]
		status := a.Status
		if status == "" {
			status = models.ApartmentActive
		}
		if _, err := db.ExecContext(ctx, query,
			a.ID, a.OwnerID, a.City, a.Address,
			a.NightlyPrice, a.MonthlyPrice, status, now, now); err != nil {
			return fmt.Errorf("failed to seed apartment %d: %w", a.ID, err)
		}
	}
	return nil
}
