package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"park-portal/internal/models"
)

// ErrVersionConflict is returned when a conditional update matched no row
// because the ticket changed since it was read.
var ErrVersionConflict = errors.New("ticket was modified concurrently")

// ErrNotFound is returned when a lookup matches no ticket.
var ErrNotFound = errors.New("ticket not found")

// ErrDraftExists is returned when an insert trips the one-open-draft
// unique index.
var ErrDraftExists = errors.New("owner already has an open draft")

// DB is the ticket store accessor. Every call runs under QueryTimeout.
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

func (d *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.QueryTimeout)
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (d *DB) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	_, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx)
	if isUniqueViolation(err) {
		return ErrDraftExists
	}
	return err
}

// isUniqueViolation reports whether err is a unique-index violation, in
// postgres (code 23505) or sqlite wording.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ticket, nil
}

// GetDraftByOwner returns the owner's unbought ticket. At most one draft
// exists per owner; the service rejects a second order while one is open.
func (d *DB) GetDraftByOwner(ctx context.Context, ownerID string) (*models.Ticket, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("owner_id = ?", ownerID).
		Where("bought = ?", false).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ticket, nil
}

// GetAmendableTicket looks up a bought ticket by id, owner and a date on
// or after today. Owner mismatch, past date and unbought state all come
// back as ErrNotFound on purpose.
func (d *DB) GetAmendableTicket(ctx context.Context, id, ownerID string, today time.Time) (*models.Ticket, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Where("bought = ?", true).
		Where("date >= ?", today).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ticket, nil
}

// GetTicketForDay returns the owner's bought ticket whose normalized date
// equals day.
func (d *DB) GetTicketForDay(ctx context.Context, ownerID string, day time.Time) (*models.Ticket, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("owner_id = ?", ownerID).
		Where("bought = ?", true).
		Where("date = ?", day).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ticket, nil
}

// ListPurchasedByOwner returns all bought tickets for the owner, ascending
// by date. Includes today and past dates; the caller filters further.
func (d *DB) ListPurchasedByOwner(ctx context.Context, ownerID string) ([]models.Ticket, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("owner_id = ?", ownerID).
		Where("bought = ?", true).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ListPastByOwner returns bought tickets dated before today.
func (d *DB) ListPastByOwner(ctx context.Context, ownerID string, today time.Time) ([]models.Ticket, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("owner_id = ?", ownerID).
		Where("bought = ?", true).
		Where("date < ?", today).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// UpdateReservations persists the reservation list and total cost in one
// conditional update. Both columns land together or not at all; if the row
// version moved since the read, nothing is written and ErrVersionConflict
// is returned so the caller can retry with fresh state.
func (d *DB) UpdateReservations(ctx context.Context, ticket models.Ticket, expectedVersion int64) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	ticket.Version = expectedVersion + 1
	res, err := d.Bun.NewUpdate().
		Model(&ticket).
		Column("fast_track_rides", "total_cost", "version").
		Where("id = ?", ticket.ID).
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVersionConflict
	}
	return nil
}

// MarkBought flips the bought flag and stores the entry pass, conditional
// on the version read. Bought is monotonic; no call ever clears it.
func (d *DB) MarkBought(ctx context.Context, ticket models.Ticket, expectedVersion int64) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	ticket.Bought = true
	ticket.Version = expectedVersion + 1
	res, err := d.Bun.NewUpdate().
		Model(&ticket).
		Column("bought", "entry_pass", "version").
		Where("id = ?", ticket.ID).
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVersionConflict
	}
	return nil
}
