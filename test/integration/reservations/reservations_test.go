package reservations

import (
	"net/http"
	"testing"

	"campsite/test/integration/testutil"
)

type bookingResponse struct {
	Data struct {
		TransactionID string `json:"transaction_id"`
	} `json:"data"`
}

type availabilityResponse struct {
	Data []struct {
		Date      string `json:"date"`
		Available bool   `json:"available"`
	} `json:"data"`
}

func TestReservationLifecycle(t *testing.T) {
	testutil.SkipUnlessEnabled(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	payload := testutil.NewBookingPayload(2, 1)

	// Book
	resp := client.POST(t, "/api/v1/reservations", payload)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var booked bookingResponse
	if err := resp.UnmarshalJSON(&booked); err != nil {
		t.Fatalf("failed to decode booking response: %v", err)
	}
	if booked.Data.TransactionID == "" {
		t.Fatal("expected a transaction id")
	}
	if got := mongo.CountDocuments(t, testutil.ReservationsCollection); got != 1 {
		t.Fatalf("expected 1 stored reservation, got %d", got)
	}

	// The booked days show as unavailable.
	resp = client.GET(t, "/api/v1/reservations/availability?start_date="+payload.CheckIn+"&end_date="+payload.CheckOut)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var availability availabilityResponse
	if err := resp.UnmarshalJSON(&availability); err != nil {
		t.Fatalf("failed to decode availability response: %v", err)
	}
	for _, day := range availability.Data {
		if day.Available {
			t.Errorf("expected %s to be unavailable", day.Date)
		}
	}

	// A second booking on the same dates is refused.
	resp = client.POST(t, "/api/v1/reservations", payload)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)

	// Modify to later dates.
	moved := testutil.NewBookingPayload(10, 1)
	resp = client.PUT(t, "/api/v1/reservations/"+booked.Data.TransactionID, moved)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var modified bookingResponse
	if err := resp.UnmarshalJSON(&modified); err != nil {
		t.Fatalf("failed to decode modify response: %v", err)
	}
	if modified.Data.TransactionID == booked.Data.TransactionID {
		t.Error("expected modify to issue a new transaction id")
	}

	// Cancel
	resp = client.DELETE(t, "/api/v1/reservations/"+modified.Data.TransactionID)
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	if got := mongo.CountDocuments(t, testutil.ReservationsCollection); got != 0 {
		t.Fatalf("expected no stored reservations, got %d", got)
	}
}

func TestBookingValidation(t *testing.T) {
	testutil.SkipUnlessEnabled(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	// Four calendar days exceeds the default maximum stay.
	tooLong := testutil.NewBookingPayload(2, 3)
	resp := client.POST(t, "/api/v1/reservations", tooLong)
	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)

	// Same-day check-in violates the lead-time window.
	tooSoon := testutil.NewBookingPayload(0, 1)
	resp = client.POST(t, "/api/v1/reservations", tooSoon)
	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)

	// Malformed payload.
	resp = client.POST(t, "/api/v1/reservations", testutil.BookingPayload{
		Name:     "X",
		Email:    "not-an-email",
		CheckIn:  "10/10/2026",
		CheckOut: "2026-10-12",
	})
	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)

	if got := mongo.CountDocuments(t, testutil.ReservationsCollection); got != 0 {
		t.Fatalf("expected no stored reservations, got %d", got)
	}
}

func TestCancelUnknownReservation(t *testing.T) {
	testutil.SkipUnlessEnabled(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	resp := client.DELETE(t, "/api/v1/reservations/does-not-exist")
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}
