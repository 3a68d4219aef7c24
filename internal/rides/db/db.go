package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"park-portal/internal/models"
)

// ErrNotFound is returned when no ride matches the id.
var ErrNotFound = errors.New("ride not found")

// DB is the read-only ride catalog accessor.
type DB struct {
	Bun          *bun.DB
	QueryTimeout time.Duration
}

func New(bunDB *bun.DB, queryTimeout time.Duration) *DB {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &DB{Bun: bunDB, QueryTimeout: queryTimeout}
}

func (d *DB) GetRideByID(ctx context.Context, id string) (*models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, d.QueryTimeout)
	defer cancel()

	var ride models.Ride
	err := d.Bun.NewSelect().
		Model(&ride).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ride, nil
}

func (d *DB) ListRides(ctx context.Context) ([]models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, d.QueryTimeout)
	defer cancel()

	var rides []models.Ride
	err := d.Bun.NewSelect().
		Model(&rides).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rides, nil
}
