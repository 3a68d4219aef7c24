package tickets

import (
	"context"
	"errors"
	"fmt"

	"park-portal/internal/models"
	"park-portal/internal/rides"
	"park-portal/internal/tickets/db"
)

// addReservation is the fast-track reservation engine. It appends a
// snapshot of the resolved ride to the ticket fetched by fetch, recomputes
// the total from the base price and the snapshots (submitted totals are
// never trusted), and persists both fields in one conditional update.
//
// Appends are unconditional: reserving the same ride twice is legal and
// charges its fast-track price twice, matching the portal's behavior.
// Whether double-booking is intended is an open product question; it is
// preserved here, not deduplicated.
//
// A lost version race is retried once against freshly fetched state, which
// also re-applies the caller's ownership and date gating.
func (s *TicketService) addReservation(ctx context.Context, fetch func(context.Context) (*models.Ticket, error), rideID string) (*models.Ticket, error) {
	ride, err := s.Catalog.FindRide(ctx, rideID)
	if err != nil {
		if errors.Is(err, rides.ErrRideNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("resolving ride %s: %w", rideID, mapStoreErr(err))
	}

	for attempt := 0; attempt < 2; attempt++ {
		ticket, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		ticket.FastTrackRides = append(ticket.FastTrackRides, *ride)
		ticket.TotalCost = recomputeCost(s.BasePrice, ticket.FastTrackRides)

		err = s.DB.UpdateReservations(ctx, *ticket, ticket.Version)
		if errors.Is(err, db.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("persisting reservation: %w", mapStoreErr(err))
		}

		ticket.Version++
		s.logTicket("FAST_TRACK", ticket.ID, fmt.Sprintf("reserved %s, total now %.2f", ride.Name, ticket.TotalCost))

		if s.Kafka != nil {
			if err := s.Kafka.PublishTicketAmended(*ticket); err != nil && s.Logger != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("publish ticket amended: %v", err))
			}
		}
		return ticket, nil
	}
	return nil, ErrWriteConflict
}

// recomputeCost re-derives the invariant total: base admission plus every
// reserved snapshot's fast-track price.
func recomputeCost(base float64, reservations []models.Ride) float64 {
	total := base
	for _, r := range reservations {
		total += r.FastTrackPrice
	}
	return total
}
