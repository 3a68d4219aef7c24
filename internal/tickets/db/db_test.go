package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"park-portal/internal/models"
	"park-portal/internal/tickets/db"
	"park-portal/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	// Create a Bun DB instance
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	// Create required tables
	_, err = bunDB.NewCreateTable().Model((*models.Ticket)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create tickets table: %v", err)
	}

	_, err = bunDB.ExecContext(context.Background(),
		"CREATE UNIQUE INDEX idx_tickets_one_draft ON tickets (owner_id) WHERE NOT bought")
	if err != nil {
		t.Fatalf("Failed to create draft index: %v", err)
	}

	return db.New(bunDB, 5*time.Second), bunDB
}

func newTicket(ownerID string, date time.Time, bought bool) models.Ticket {
	return models.Ticket{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Date:           utils.NormalizeDate(date),
		FastTrackRides: []models.Ride{},
		UsedRides:      []string{},
		TotalCost:      20,
		Bought:         bought,
		Version:        1,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestCreateAndGetTicket(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	testTicket := newTicket("owner123", time.Now(), false)

	// Test case: Create ticket
	err := ticketDB.CreateTicket(context.Background(), testTicket)
	assert.NoError(t, err)

	// Test case: Get ticket by ID
	ticket, err := ticketDB.GetTicketByID(context.Background(), testTicket.ID)
	assert.NoError(t, err)
	assert.NotNil(t, ticket)
	assert.Equal(t, testTicket.ID, ticket.ID)
	assert.Equal(t, "owner123", ticket.OwnerID)
	assert.Equal(t, 20.0, ticket.TotalCost)

	// Test case: Get non-existent ticket
	ticket, err = ticketDB.GetTicketByID(context.Background(), "non-existent")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Nil(t, ticket)
}

func TestCreateTicketSecondDraftRejected(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	first := newTicket("owner123", time.Now(), false)
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), first))

	// Test case: A second open draft for the same owner trips the index
	second := newTicket("owner123", time.Now().AddDate(0, 0, 1), false)
	err := ticketDB.CreateTicket(context.Background(), second)
	assert.ErrorIs(t, err, db.ErrDraftExists)

	// Test case: Bought tickets are outside the index
	bought := newTicket("owner123", time.Now().AddDate(0, 0, 2), true)
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), bought))

	// Test case: Another owner's draft is unaffected
	other := newTicket("owner456", time.Now(), false)
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), other))
}

func TestGetDraftByOwner(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	// A bought ticket and a draft for the same owner
	bought := newTicket("owner123", time.Now(), true)
	draft := newTicket("owner123", time.Now().AddDate(0, 0, 1), false)
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), bought))
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), draft))

	// Test case: Only the unbought ticket counts as the draft
	ticket, err := ticketDB.GetDraftByOwner(context.Background(), "owner123")
	assert.NoError(t, err)
	assert.Equal(t, draft.ID, ticket.ID)

	// Test case: Another owner has no draft
	_, err = ticketDB.GetDraftByOwner(context.Background(), "owner456")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUpdateReservationsVersioning(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	testTicket := newTicket("owner123", time.Now(), false)
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), testTicket))

	// Test case: Update with the version that was read
	testTicket.FastTrackRides = []models.Ride{{ID: uuid.New().String(), Name: "Mine Coaster", FastTrackPrice: 12.5}}
	testTicket.TotalCost = 32.5
	err := ticketDB.UpdateReservations(context.Background(), testTicket, 1)
	assert.NoError(t, err)

	updated, err := ticketDB.GetTicketByID(context.Background(), testTicket.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, 32.5, updated.TotalCost)
	assert.Len(t, updated.FastTrackRides, 1)

	// Test case: A stale version writes nothing
	err = ticketDB.UpdateReservations(context.Background(), testTicket, 1)
	assert.ErrorIs(t, err, db.ErrVersionConflict)

	unchanged, err := ticketDB.GetTicketByID(context.Background(), testTicket.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), unchanged.Version)
	assert.Len(t, unchanged.FastTrackRides, 1)
}

func TestMarkBoughtVersioning(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	testTicket := newTicket("owner123", time.Now(), false)
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), testTicket))

	// Test case: Stale version is rejected
	err := ticketDB.MarkBought(context.Background(), testTicket, 7)
	assert.ErrorIs(t, err, db.ErrVersionConflict)

	// Test case: Flip with the current version
	testTicket.EntryPass = []byte("png-bytes")
	err = ticketDB.MarkBought(context.Background(), testTicket, 1)
	assert.NoError(t, err)

	bought, err := ticketDB.GetTicketByID(context.Background(), testTicket.ID)
	assert.NoError(t, err)
	assert.True(t, bought.Bought)
	assert.Equal(t, int64(2), bought.Version)
	assert.Equal(t, []byte("png-bytes"), bought.EntryPass)
}

func TestGetAmendableTicket(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	today := utils.Today()
	futureTicket := newTicket("owner123", today.AddDate(0, 0, 2), true)
	pastTicket := newTicket("owner123", today.AddDate(0, 0, -2), true)
	draft := newTicket("owner123", today.AddDate(0, 0, 3), false)
	for _, tk := range []models.Ticket{futureTicket, pastTicket, draft} {
		assert.NoError(t, ticketDB.CreateTicket(context.Background(), tk))
	}

	// Test case: Bought ticket on or after today is amendable
	ticket, err := ticketDB.GetAmendableTicket(context.Background(), futureTicket.ID, "owner123", today)
	assert.NoError(t, err)
	assert.Equal(t, futureTicket.ID, ticket.ID)

	// Test case: Past date matches nothing
	_, err = ticketDB.GetAmendableTicket(context.Background(), pastTicket.ID, "owner123", today)
	assert.ErrorIs(t, err, db.ErrNotFound)

	// Test case: Unbought draft matches nothing
	_, err = ticketDB.GetAmendableTicket(context.Background(), draft.ID, "owner123", today)
	assert.ErrorIs(t, err, db.ErrNotFound)

	// Test case: Wrong owner matches nothing
	_, err = ticketDB.GetAmendableTicket(context.Background(), futureTicket.ID, "owner456", today)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestGetTicketForDay(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	today := utils.Today()
	todayTicket := newTicket("owner123", today, true)
	tomorrowTicket := newTicket("owner123", today.AddDate(0, 0, 1), true)
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), todayTicket))
	assert.NoError(t, ticketDB.CreateTicket(context.Background(), tomorrowTicket))

	ticket, err := ticketDB.GetTicketForDay(context.Background(), "owner123", today)
	assert.NoError(t, err)
	assert.Equal(t, todayTicket.ID, ticket.ID)

	_, err = ticketDB.GetTicketForDay(context.Background(), "owner123", today.AddDate(0, 0, 5))
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestListPurchasedByOwnerOrdering(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	today := utils.Today()
	later := newTicket("owner123", today.AddDate(0, 0, 9), true)
	sooner := newTicket("owner123", today.AddDate(0, 0, 1), true)
	draft := newTicket("owner123", today.AddDate(0, 0, 4), false)
	other := newTicket("owner456", today.AddDate(0, 0, 2), true)
	for _, tk := range []models.Ticket{later, sooner, draft, other} {
		assert.NoError(t, ticketDB.CreateTicket(context.Background(), tk))
	}

	// Test case: Bought tickets only, ascending by date
	tickets, err := ticketDB.ListPurchasedByOwner(context.Background(), "owner123")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(tickets))
	assert.Equal(t, sooner.ID, tickets[0].ID)
	assert.Equal(t, later.ID, tickets[1].ID)
}

func TestListPastByOwner(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	today := utils.Today()
	past := newTicket("owner123", today.AddDate(0, 0, -5), true)
	todayTicket := newTicket("owner123", today, true)
	for _, tk := range []models.Ticket{past, todayTicket} {
		assert.NoError(t, ticketDB.CreateTicket(context.Background(), tk))
	}

	// Test case: Today is not past
	tickets, err := ticketDB.ListPastByOwner(context.Background(), "owner123", today)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(tickets))
	assert.Equal(t, past.ID, tickets[0].ID)
}
