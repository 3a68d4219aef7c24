package view_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"park-portal/internal/models"
	"park-portal/internal/tickets/view"
)

func TestProjectDecoratesRelativeToToday(t *testing.T) {
	today := time.Date(2026, 9, 12, 15, 45, 0, 0, time.UTC)
	tickets := []models.Ticket{
		{ID: uuid.NewString(), Date: time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC), TotalCost: 20},
		{ID: uuid.NewString(), Date: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), TotalCost: 32.5},
		{ID: uuid.NewString(), Date: time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC), TotalCost: 27},
	}

	views := view.Project(tickets, today)

	assert.Len(t, views, 3)

	assert.False(t, views[0].IsToday)
	assert.False(t, views[0].IsFuture)

	assert.True(t, views[1].IsToday)
	assert.False(t, views[1].IsFuture)

	assert.False(t, views[2].IsToday)
	assert.True(t, views[2].IsFuture)
}

func TestProjectFormatsTotals(t *testing.T) {
	tickets := []models.Ticket{
		{ID: uuid.NewString(), TotalCost: 20},
		{ID: uuid.NewString(), TotalCost: 32.5},
		{ID: uuid.NewString(), TotalCost: 39.99},
	}

	views := view.Project(tickets, time.Now())

	assert.Equal(t, "20.00", views[0].DisplayTotal)
	assert.Equal(t, "32.50", views[1].DisplayTotal)
	assert.Equal(t, "39.99", views[2].DisplayTotal)
}

func TestProjectLeavesInputUntouched(t *testing.T) {
	original := models.Ticket{
		ID:        uuid.NewString(),
		Date:      time.Date(2026, 9, 12, 9, 30, 0, 0, time.UTC),
		TotalCost: 25,
	}
	tickets := []models.Ticket{original}

	first := view.Project(tickets, time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC))
	second := view.Project(tickets, time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC))

	// Projection is repeatable and does not normalize the stored date.
	assert.Equal(t, first, second)
	assert.Equal(t, original, tickets[0])
}

func TestProjectEmpty(t *testing.T) {
	views := view.Project(nil, time.Now())
	assert.NotNil(t, views)
	assert.Len(t, views, 0)
}
