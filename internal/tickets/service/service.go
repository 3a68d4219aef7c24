package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"park-portal/internal/logger"
	"park-portal/internal/models"
	"park-portal/internal/rides"
	"park-portal/internal/tickets/db"
	"park-portal/internal/utils"
)

// TicketDBLayer is the ticket store as the lifecycle manager sees it.
type TicketDBLayer interface {
	CreateTicket(ctx context.Context, ticket models.Ticket) error
	GetTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	GetDraftByOwner(ctx context.Context, ownerID string) (*models.Ticket, error)
	GetAmendableTicket(ctx context.Context, id, ownerID string, today time.Time) (*models.Ticket, error)
	GetTicketForDay(ctx context.Context, ownerID string, day time.Time) (*models.Ticket, error)
	ListPurchasedByOwner(ctx context.Context, ownerID string) ([]models.Ticket, error)
	ListPastByOwner(ctx context.Context, ownerID string, today time.Time) ([]models.Ticket, error)
	UpdateReservations(ctx context.Context, ticket models.Ticket, expectedVersion int64) error
	MarkBought(ctx context.Context, ticket models.Ticket, expectedVersion int64) error
}

// RideCatalog resolves ride ids to current catalog records.
type RideCatalog interface {
	FindRide(ctx context.Context, id string) (*models.Ride, error)
	ListRides(ctx context.Context) ([]models.Ride, error)
}

// KafkaPublisher streams lifecycle transitions. Publish failures are
// logged, never surfaced to the visitor.
type KafkaPublisher interface {
	PublishTicketOrdered(ticket models.Ticket) error
	PublishTicketPurchased(ticket models.Ticket) error
	PublishTicketAmended(ticket models.Ticket) error
}

// PassGenerator produces the encrypted QR entry pass issued at purchase.
type PassGenerator interface {
	GenerateEntryPass(ticket models.Ticket) ([]byte, error)
}

// TicketService orchestrates the ticket lifecycle: order, current,
// confirm, buy, amend, and the date-filtered views. Every operation that
// touches the store follows resolve owner, resolve ticket, mutate in
// memory, persist conditionally.
type TicketService struct {
	DB        TicketDBLayer
	Catalog   RideCatalog
	Kafka     KafkaPublisher
	Passes    PassGenerator
	BasePrice float64
	Logger    *logger.Logger
}

func NewTicketService(dbLayer TicketDBLayer, catalog RideCatalog, kafka KafkaPublisher, passes PassGenerator, basePrice float64, log *logger.Logger) *TicketService {
	return &TicketService{
		DB:        dbLayer,
		Catalog:   catalog,
		Kafka:     kafka,
		Passes:    passes,
		BasePrice: basePrice,
		Logger:    log,
	}
}

// mapStoreErr converts a timed-out store call into the typed failure;
// everything else passes through for the caller to classify.
func mapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStoreUnavailable
	}
	return err
}

func (s *TicketService) logTicket(action, ticketID, message string) {
	if s.Logger != nil {
		s.Logger.LogTicket(action, ticketID, message)
	}
}

// Order creates a draft ticket for the given calendar day: base admission
// cost, no reservations, unbought. A second order while a draft is open is
// rejected.
func (s *TicketService) Order(ctx context.Context, ownerID string, date time.Time) (*models.Ticket, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	existing, err := s.DB.GetDraftByOwner(ctx, ownerID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("checking for open draft: %w", mapStoreErr(err))
	}
	if existing != nil {
		return nil, ErrDuplicateDraft
	}

	ticket := models.Ticket{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Date:           utils.NormalizeDate(date),
		FastTrackRides: []models.Ride{},
		UsedRides:      []string{},
		TotalCost:      s.BasePrice,
		Bought:         false,
		Version:        1,
		CreatedAt:      time.Now().UTC(),
	}

	// The pre-check above is a fast path; the store's unique index on open
	// drafts is what holds under concurrent orders.
	if err := s.DB.CreateTicket(ctx, ticket); err != nil {
		if errors.Is(err, db.ErrDraftExists) {
			return nil, ErrDuplicateDraft
		}
		return nil, fmt.Errorf("creating ticket: %w", mapStoreErr(err))
	}
	s.logTicket("ORDER", ticket.ID, fmt.Sprintf("draft created for %s", ticket.Date.Format("2006-01-02")))

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketOrdered(ticket); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish ticket ordered: %v", err))
		}
	}
	return &ticket, nil
}

// Current returns the visitor's open draft, or a never-persisted default
// with the base admission cost when none exists.
func (s *TicketService) Current(ctx context.Context, ownerID string) (*models.Ticket, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	ticket, err := s.DB.GetDraftByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return s.defaultTicket(ownerID), nil
		}
		return nil, fmt.Errorf("fetching current ticket: %w", mapStoreErr(err))
	}
	return ticket, nil
}

// defaultTicket is the zero-state view shown before any draft exists.
// It has no id and is never written to the store.
func (s *TicketService) defaultTicket(ownerID string) *models.Ticket {
	return &models.Ticket{
		OwnerID:        ownerID,
		FastTrackRides: []models.Ride{},
		UsedRides:      []string{},
		TotalCost:      s.BasePrice,
	}
}

// GetTicket returns one of the caller's tickets by id. Another visitor's
// ticket reads as not found, same as the amend gating.
func (s *TicketService) GetTicket(ctx context.Context, ownerID, ticketID string) (*models.Ticket, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, ErrInvalidReference
	}

	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("fetching ticket: %w", mapStoreErr(err))
	}
	if ticket.OwnerID != ownerID {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

// Confirm returns the draft's running total, or the base price if no
// draft is open. Read-only.
func (s *TicketService) Confirm(ctx context.Context, ownerID string) (float64, error) {
	ticket, err := s.Current(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return ticket.TotalCost, nil
}

// Buy finalizes the open draft: issues the entry pass and flips bought.
// The flip is monotonic and conditional on the version read; a losing
// race is retried once with fresh state.
func (s *TicketService) Buy(ctx context.Context, ownerID string) (*models.Ticket, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	for attempt := 0; attempt < 2; attempt++ {
		ticket, err := s.DB.GetDraftByOwner(ctx, ownerID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, ErrNoActiveTicket
			}
			return nil, fmt.Errorf("fetching draft: %w", mapStoreErr(err))
		}

		if s.Passes != nil {
			pass, err := s.Passes.GenerateEntryPass(*ticket)
			if err != nil {
				return nil, fmt.Errorf("generating entry pass: %w", err)
			}
			ticket.EntryPass = pass
		}

		err = s.DB.MarkBought(ctx, *ticket, ticket.Version)
		if errors.Is(err, db.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("finalizing purchase: %w", mapStoreErr(err))
		}

		ticket.Bought = true
		ticket.Version++
		s.logTicket("BUY", ticket.ID, fmt.Sprintf("purchased for %.2f", ticket.TotalCost))

		if s.Kafka != nil {
			if err := s.Kafka.PublishTicketPurchased(*ticket); err != nil && s.Logger != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("publish ticket purchased: %v", err))
			}
		}
		return ticket, nil
	}
	return nil, ErrWriteConflict
}

// ListFuture returns all purchased tickets ascending by date. "Future"
// includes today and, matching the portal's view, already-past purchases;
// the view projector decorates each with isToday/isFuture.
func (s *TicketService) ListFuture(ctx context.Context, ownerID string) ([]models.Ticket, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	tickets, err := s.DB.ListPurchasedByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing purchased tickets: %w", mapStoreErr(err))
	}
	return tickets, nil
}

// ListPast returns purchased tickets dated before today.
func (s *TicketService) ListPast(ctx context.Context, ownerID string) ([]models.Ticket, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	tickets, err := s.DB.ListPastByOwner(ctx, ownerID, utils.Today())
	if err != nil {
		return nil, fmt.Errorf("listing past tickets: %w", mapStoreErr(err))
	}
	return tickets, nil
}

// AddFastTrack reserves a ride on the visitor's open draft.
func (s *TicketService) AddFastTrack(ctx context.Context, ownerID, rideID string) (*models.Ticket, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(rideID); err != nil {
		return nil, ErrInvalidReference
	}

	fetch := func(ctx context.Context) (*models.Ticket, error) {
		ticket, err := s.DB.GetDraftByOwner(ctx, ownerID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, ErrNoActiveTicket
			}
			return nil, fmt.Errorf("fetching draft: %w", mapStoreErr(err))
		}
		return ticket, nil
	}
	return s.addReservation(ctx, fetch, rideID)
}

// Amend reserves a ride on a purchased ticket whose date has not passed.
// Wrong owner, unbought state and past dates all surface as
// ErrTicketNotFound.
func (s *TicketService) Amend(ctx context.Context, ownerID, ticketID, rideID string) (*models.Ticket, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, ErrInvalidReference
	}
	if _, err := uuid.Parse(rideID); err != nil {
		return nil, ErrInvalidReference
	}

	fetch := func(ctx context.Context) (*models.Ticket, error) {
		ticket, err := s.DB.GetAmendableTicket(ctx, ticketID, ownerID, utils.Today())
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, ErrTicketNotFound
			}
			return nil, fmt.Errorf("fetching ticket for amendment: %w", mapStoreErr(err))
		}
		return ticket, nil
	}
	return s.addReservation(ctx, fetch, rideID)
}

// RemainingFastTrackRides resolves each ride reserved on today's purchased
// ticket to its current catalog record. Rides since removed from the
// catalog are skipped.
func (s *TicketService) RemainingFastTrackRides(ctx context.Context, ownerID string) ([]models.Ride, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	ticket, err := s.DB.GetTicketForDay(ctx, ownerID, utils.Today())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNoTicketForToday
		}
		return nil, fmt.Errorf("fetching today's ticket: %w", mapStoreErr(err))
	}

	resolved := make([]models.Ride, 0, len(ticket.FastTrackRides))
	for _, snapshot := range ticket.FastTrackRides {
		ride, err := s.Catalog.FindRide(ctx, snapshot.ID)
		if err != nil {
			if errors.Is(err, rides.ErrRideNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolving ride %s: %w", snapshot.ID, mapStoreErr(err))
		}
		resolved = append(resolved, *ride)
	}
	return resolved, nil
}
