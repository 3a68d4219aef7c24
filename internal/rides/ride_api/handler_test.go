package ride_api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"park-portal/internal/models"
	"park-portal/internal/rides"
	"park-portal/internal/rides/ride_api"
	"park-portal/internal/utils"
)

// stubCatalogDB serves a fixed listing.
type stubCatalogDB struct {
	rides []models.Ride
	err   error
}

func (s *stubCatalogDB) GetRideByID(_ context.Context, id string) (*models.Ride, error) {
	for _, ride := range s.rides {
		if ride.ID == id {
			r := ride
			return &r, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubCatalogDB) ListRides(_ context.Context) ([]models.Ride, error) {
	return s.rides, s.err
}

func TestListRidesEndpoint(t *testing.T) {
	catalog := []models.Ride{
		{ID: uuid.NewString(), Name: "Log Flume", FastTrackPrice: 7},
		{ID: uuid.NewString(), Name: "Mine Coaster", FastTrackPrice: 12.5},
	}
	handler := ride_api.NewHandler(rides.NewService(&stubCatalogDB{rides: catalog}, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rides", nil)
	rec := httptest.NewRecorder()
	handler.ListRides(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var listed []models.Ride
	require.NoError(t, json.Unmarshal(data, &listed))
	assert.Len(t, listed, 2)
}

func TestListRidesEndpointFailure(t *testing.T) {
	handler := ride_api.NewHandler(rides.NewService(&stubCatalogDB{err: errors.New("connection refused")}, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rides", nil)
	rec := httptest.NewRecorder()
	handler.ListRides(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
