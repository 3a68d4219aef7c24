// Package view derives display-only fields from purchased tickets. It
// decorates a set the lifecycle manager has already filtered; it never
// queries or mutates stored state.
package view

import (
	"strconv"
	"time"

	"park-portal/internal/models"
	"park-portal/internal/utils"
)

// TicketView is a ticket plus its display decorations.
type TicketView struct {
	models.Ticket
	IsToday      bool   `json:"is_today"`
	IsFuture     bool   `json:"is_future"`
	DisplayTotal string `json:"display_total"`
}

// Project decorates each ticket relative to today. Safe to call
// repeatedly; the input slice is untouched.
func Project(tickets []models.Ticket, today time.Time) []TicketView {
	today = utils.NormalizeDate(today)

	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		date := utils.NormalizeDate(t.Date)
		views = append(views, TicketView{
			Ticket:       t,
			IsToday:      date.Equal(today),
			IsFuture:     date.After(today),
			DisplayTotal: strconv.FormatFloat(t.TotalCost, 'f', 2, 64),
		})
	}
	return views
}
