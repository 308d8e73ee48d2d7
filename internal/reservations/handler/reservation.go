package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"campsite/internal/reservations/service"
	"campsite/pkg/daterange"
	apperrors "campsite/pkg/errors"
	httputil "campsite/pkg/http"
	"campsite/pkg/logger"
	"campsite/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

// BookingResponse carries the transaction id issued for a booking; the id is
// the handle for later cancellation or modification.
type BookingResponse struct {
	TransactionID string `json:"transaction_id"`
}

func (h *ReservationHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	transactionID, err := h.service.Book(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, BookingResponse{TransactionID: transactionID}); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	transactionID := ps.ByName("transactionId")

	if err := h.service.Cancel(r.Context(), transactionID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) Modify(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	transactionID := ps.ByName("transactionId")

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Modify", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	newTransactionID, err := h.service.Modify(r.Context(), transactionID, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Modify", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, BookingResponse{TransactionID: newTransactionID}); err != nil {
		h.log.Error("failed to write success response", "handler", "Modify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	startDate, endDate, err := availabilityRange(r, time.Now())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	availability, err := h.service.Availability(r.Context(), startDate, endDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

// availabilityRange parses the optional start_date and end_date query
// parameters. An omitted range defaults to the month starting today.
func availabilityRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	query := r.URL.Query()

	startDate := daterange.Normalize(now)
	if raw := query.Get("start_date"); raw != "" {
		parsed, err := daterange.ParseDay(raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid start_date parameter: %s", raw))
		}
		startDate = parsed
	}

	endDate := startDate.AddDate(0, 1, 0)
	if raw := query.Get("end_date"); raw != "" {
		parsed, err := daterange.ParseDay(raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid end_date parameter: %s", raw))
		}
		endDate = parsed
	}

	return startDate, endDate, nil
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Book)
	router.PUT("/api/v1/reservations/:transactionId", h.Modify)
	router.DELETE("/api/v1/reservations/:transactionId", h.Cancel)

	router.GET("/api/v1/reservations/availability", h.Availability)
}
