package ticket_api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"park-portal/internal/auth"
	"park-portal/internal/logger"
	tickets "park-portal/internal/tickets/service"
	"park-portal/internal/tickets/view"
	"park-portal/internal/utils"
)

// Handler maps the portal's ticket routes onto the lifecycle manager.
type Handler struct {
	TicketService *tickets.TicketService
	Logger        *logger.Logger
}

func NewHandler(service *tickets.TicketService, log *logger.Logger) *Handler {
	return &Handler{TicketService: service, Logger: log}
}

// statusFor maps the service failure taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tickets.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, tickets.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, tickets.ErrRideNotFound),
		errors.Is(err, tickets.ErrTicketNotFound),
		errors.Is(err, tickets.ErrNoActiveTicket),
		errors.Is(err, tickets.ErrNoTicketForToday):
		return http.StatusNotFound
	case errors.Is(err, tickets.ErrDuplicateDraft),
		errors.Is(err, tickets.ErrWriteConflict):
		return http.StatusConflict
	case errors.Is(err, tickets.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if h.Logger != nil {
		h.Logger.LogAPI(r.Method, r.URL.Path, http.StatusText(status)+": "+err.Error())
	}
	utils.WriteJSON(w, status, utils.ErrorResponse(message, err.Error()))
}

type orderRequest struct {
	Date string `json:"date"` // "2006-01-02", or RFC3339 from older clients
}

// OrderTicket creates a draft ticket for the requested day.
func (h *Handler) OrderTicket(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid date", err.Error()))
		return
	}

	ticket, err := h.TicketService.Order(r.Context(), auth.OwnerID(r.Context()), date)
	if err != nil {
		h.fail(w, r, "could not order ticket", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("ticket ordered", ticket))
}

// TicketByID returns one of the visitor's tickets.
func (h *Handler) TicketByID(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.TicketService.GetTicket(r.Context(), auth.OwnerID(r.Context()), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.fail(w, r, "could not fetch ticket", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket", ticket))
}

// CurrentTicket shows the open draft, or the zero-state default.
func (h *Handler) CurrentTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.TicketService.Current(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.fail(w, r, "could not fetch current ticket", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("current ticket", ticket))
}

// ConfirmPurchase shows the running total ahead of buying.
func (h *Handler) ConfirmPurchase(w http.ResponseWriter, r *http.Request) {
	total, err := h.TicketService.Confirm(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.fail(w, r, "could not confirm purchase", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("purchase total", map[string]float64{"total": total}))
}

// BuyTicket finalizes the open draft.
func (h *Handler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.TicketService.Buy(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.fail(w, r, "could not buy ticket", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket purchased", ticket))
}

type fastTrackRequest struct {
	RideID string `json:"ride_id"`
}

// AddFastTrack reserves a ride on the open draft.
func (h *Handler) AddFastTrack(w http.ResponseWriter, r *http.Request) {
	var req fastTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	ticket, err := h.TicketService.AddFastTrack(r.Context(), auth.OwnerID(r.Context()), req.RideID)
	if err != nil {
		h.fail(w, r, "could not add fast-track ride", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("fast-track ride added", ticket))
}

// FutureTickets lists purchased tickets decorated for display.
func (h *Handler) FutureTickets(w http.ResponseWriter, r *http.Request) {
	list, err := h.TicketService.ListFuture(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.fail(w, r, "could not list tickets", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("purchased tickets", view.Project(list, time.Now())))
}

// PastTickets lists purchased tickets for days gone by.
func (h *Handler) PastTickets(w http.ResponseWriter, r *http.Request) {
	list, err := h.TicketService.ListPast(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.fail(w, r, "could not list past tickets", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("past tickets", list))
}

type amendRequest struct {
	TicketID string `json:"ticket_id"`
	RideID   string `json:"ride_id"`
}

// AmendTicket reserves a ride on an already-purchased ticket.
func (h *Handler) AmendTicket(w http.ResponseWriter, r *http.Request) {
	var req amendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	ticket, err := h.TicketService.Amend(r.Context(), auth.OwnerID(r.Context()), req.TicketID, req.RideID)
	if err != nil {
		h.fail(w, r, "could not amend ticket", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket amended", ticket))
}

// RemainingRides resolves the rides reserved on today's ticket.
func (h *Handler) RemainingRides(w http.ResponseWriter, r *http.Request) {
	ridesList, err := h.TicketService.RemainingFastTrackRides(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.fail(w, r, "could not fetch remaining rides", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("remaining fast-track rides", ridesList))
}

// parseDate accepts a plain calendar day or a full timestamp; either way
// the service normalizes to midnight before storing.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
