package models

import "time"

// TicketEvent is the payload published to Kafka on lifecycle transitions.
type TicketEvent struct {
	TicketID   string    `json:"ticket_id"`
	OwnerID    string    `json:"owner_id"`
	Date       time.Time `json:"date"`
	TotalCost  float64   `json:"total_cost"`
	RideCount  int       `json:"ride_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewTicketEvent(t Ticket) TicketEvent {
	return TicketEvent{
		TicketID:   t.ID,
		OwnerID:    t.OwnerID,
		Date:       t.Date,
		TotalCost:  t.TotalCost,
		RideCount:  len(t.FastTrackRides),
		OccurredAt: time.Now().UTC(),
	}
}
