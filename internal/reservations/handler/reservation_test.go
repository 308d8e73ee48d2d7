package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/model"
)

type mockReservationService struct {
	bookFunc         func(ctx context.Context, req *model.BookingRequest) (string, error)
	cancelFunc       func(ctx context.Context, transactionID string) error
	modifyFunc       func(ctx context.Context, transactionID string, req *model.BookingRequest) (string, error)
	availabilityFunc func(ctx context.Context, startDate, endDate time.Time) ([]model.DayAvailability, error)
}

func (m *mockReservationService) Book(ctx context.Context, req *model.BookingRequest) (string, error) {
	if m.bookFunc != nil {
		return m.bookFunc(ctx, req)
	}
	return "tx-1", nil
}

func (m *mockReservationService) Cancel(ctx context.Context, transactionID string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, transactionID)
	}
	return nil
}

func (m *mockReservationService) Modify(ctx context.Context, transactionID string, req *model.BookingRequest) (string, error) {
	if m.modifyFunc != nil {
		return m.modifyFunc(ctx, transactionID, req)
	}
	return "tx-2", nil
}

func (m *mockReservationService) Availability(ctx context.Context, startDate, endDate time.Time) ([]model.DayAvailability, error) {
	if m.availabilityFunc != nil {
		return m.availabilityFunc(ctx, startDate, endDate)
	}
	return []model.DayAvailability{}, nil
}

func testRouter(svc *mockReservationService) *httprouter.Router {
	log := logger.New(logger.Config{Output: io.Discard})
	handler := NewReservationHandler(svc, log)

	router := httprouter.New()
	handler.RegisterRoutes(router)
	return router
}

func TestBookReturnsTransactionID(t *testing.T) {
	var received *model.BookingRequest
	svc := &mockReservationService{
		bookFunc: func(_ context.Context, req *model.BookingRequest) (string, error) {
			received = req
			return "tx-42", nil
		},
	}
	router := testRouter(svc)

	body := `{"name":"Grace Hopper","email":"grace@example.com","check_in":"2026-10-10","check_out":"2026-10-12"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if received == nil || received.CheckIn != "2026-10-10" {
		t.Fatalf("service did not receive the decoded request: %+v", received)
	}

	var response struct {
		Data BookingResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Data.TransactionID != "tx-42" {
		t.Errorf("expected transaction id tx-42, got %q", response.Data.TransactionID)
	}
}

func TestBookRejectsMalformedBody(t *testing.T) {
	router := testRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestBookMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: apperrors.Validation("stay exceeds the maximum length", nil), wantStatus: http.StatusUnprocessableEntity},
		{name: "conflict", err: apperrors.Conflict("the selected dates are no longer available"), wantStatus: http.StatusConflict},
		{name: "internal", err: apperrors.Internal("boom", nil), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{
				bookFunc: func(context.Context, *model.BookingRequest) (string, error) {
					return "", tt.err
				},
			}
			router := testRouter(svc)

			body := `{"name":"Grace Hopper","email":"grace@example.com","check_in":"2026-10-10","check_out":"2026-10-12"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCancelReturnsNoContent(t *testing.T) {
	var received string
	svc := &mockReservationService{
		cancelFunc: func(_ context.Context, transactionID string) error {
			received = transactionID
			return nil
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/tx-42", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if received != "tx-42" {
		t.Errorf("expected service to receive tx-42, got %q", received)
	}
}

func TestCancelUnknownReservation(t *testing.T) {
	svc := &mockReservationService{
		cancelFunc: func(context.Context, string) error {
			return apperrors.NotFound("reservation")
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/nope", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestModifyReturnsNewTransactionID(t *testing.T) {
	svc := &mockReservationService{
		modifyFunc: func(_ context.Context, transactionID string, _ *model.BookingRequest) (string, error) {
			if transactionID != "tx-42" {
				t.Errorf("expected tx-42, got %q", transactionID)
			}
			return "tx-43", nil
		},
	}
	router := testRouter(svc)

	body := `{"name":"Grace Hopper","email":"grace@example.com","check_in":"2026-10-11","check_out":"2026-10-13"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/reservations/tx-42", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Data BookingResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Data.TransactionID != "tx-43" {
		t.Errorf("expected transaction id tx-43, got %q", response.Data.TransactionID)
	}
}

func TestModifyPartialFailure(t *testing.T) {
	svc := &mockReservationService{
		modifyFunc: func(context.Context, string, *model.BookingRequest) (string, error) {
			return "", apperrors.PartialFailure("the reservation was cancelled but the new booking failed", nil)
		},
	}
	router := testRouter(svc)

	body := `{"name":"Grace Hopper","email":"grace@example.com","check_in":"2026-10-11","check_out":"2026-10-13"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/reservations/tx-42", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestAvailabilityPassesParsedRange(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := &mockReservationService{
		availabilityFunc: func(_ context.Context, startDate, endDate time.Time) ([]model.DayAvailability, error) {
			gotStart, gotEnd = startDate, endDate
			return []model.DayAvailability{{Date: "2026-10-10", Available: true}}, nil
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/availability?start_date=2026-10-10&end_date=2026-10-20", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := gotStart.Format("2006-01-02"); got != "2026-10-10" {
		t.Errorf("expected start 2026-10-10, got %s", got)
	}
	if got := gotEnd.Format("2006-01-02"); got != "2026-10-20" {
		t.Errorf("expected end 2026-10-20, got %s", got)
	}
}

func TestAvailabilityDefaultsToOneMonth(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := &mockReservationService{
		availabilityFunc: func(_ context.Context, startDate, endDate time.Time) ([]model.DayAvailability, error) {
			gotStart, gotEnd = startDate, endDate
			return []model.DayAvailability{}, nil
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/availability", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !gotEnd.Equal(gotStart.AddDate(0, 1, 0)) {
		t.Errorf("expected a one-month default window, got %v to %v", gotStart, gotEnd)
	}
}

func TestAvailabilityRejectsMalformedDates(t *testing.T) {
	router := testRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/availability?start_date=10/10/2026", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
