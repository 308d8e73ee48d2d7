package testutil

import "time"

// BookingPayload mirrors the booking request wire format.
type BookingPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// NewBookingPayload builds a valid booking for a stay starting checkInOffset
// days from now and lasting nights+1 calendar days.
func NewBookingPayload(checkInOffset, nights int) BookingPayload {
	checkIn := time.Now().UTC().AddDate(0, 0, checkInOffset)
	checkOut := checkIn.AddDate(0, 0, nights)

	return BookingPayload{
		Name:     "Integration Tester",
		Email:    "tester@example.com",
		CheckIn:  checkIn.Format("2006-01-02"),
		CheckOut: checkOut.Format("2006-01-02"),
	}
}
