package rides

import (
	"context"
	"errors"
	"fmt"

	"park-portal/internal/models"
	"park-portal/internal/rides/db"
)

// CatalogDBLayer is the persistent side of the ride catalog.
type CatalogDBLayer interface {
	GetRideByID(ctx context.Context, id string) (*models.Ride, error)
	ListRides(ctx context.Context) ([]models.Ride, error)
}

// Cache is an optional read-through layer in front of the catalog DB.
// A nil Cache disables caching entirely.
type Cache interface {
	GetRide(ctx context.Context, id string) (*models.Ride, bool)
	SetRide(ctx context.Context, ride models.Ride)
	GetAll(ctx context.Context) ([]models.Ride, bool)
	SetAll(ctx context.Context, rides []models.Ride)
}

// ErrRideNotFound is returned when an id resolves to no catalog record.
var ErrRideNotFound = errors.New("ride not found in catalog")

// Service serves ride lookups, caching records in Redis. The catalog is
// read-only from here; rides are managed out of band.
type Service struct {
	DB    CatalogDBLayer
	Cache Cache
}

func NewService(dbLayer CatalogDBLayer, cache Cache) *Service {
	return &Service{DB: dbLayer, Cache: cache}
}

func (s *Service) FindRide(ctx context.Context, id string) (*models.Ride, error) {
	if s.Cache != nil {
		if ride, ok := s.Cache.GetRide(ctx, id); ok {
			return ride, nil
		}
	}

	ride, err := s.DB.GetRideByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("catalog lookup for ride %s: %w", id, err)
	}

	if s.Cache != nil {
		s.Cache.SetRide(ctx, *ride)
	}
	return ride, nil
}

func (s *Service) ListRides(ctx context.Context) ([]models.Ride, error) {
	if s.Cache != nil {
		if rides, ok := s.Cache.GetAll(ctx); ok {
			return rides, nil
		}
	}

	rides, err := s.DB.ListRides(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog listing: %w", err)
	}

	if s.Cache != nil {
		s.Cache.SetAll(ctx, rides)
	}
	return rides, nil
}
