package ride_api

import (
	"net/http"

	"park-portal/internal/logger"
	"park-portal/internal/rides"
	"park-portal/internal/utils"
)

// Handler serves the public ride catalog.
type Handler struct {
	Rides  *rides.Service
	Logger *logger.Logger
}

func NewHandler(service *rides.Service, log *logger.Logger) *Handler {
	return &Handler{Rides: service, Logger: log}
}

// ListRides returns every ride with its fast-track price.
func (h *Handler) ListRides(w http.ResponseWriter, r *http.Request) {
	list, err := h.Rides.ListRides(r.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.LogAPI(r.Method, r.URL.Path, err.Error())
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("could not list rides", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("rides", list))
}
