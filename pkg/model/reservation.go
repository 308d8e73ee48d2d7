package model

import "time"

// Reservation is the durable record of a campsite booking. StartDate and
// EndDate are calendar days normalized to midnight UTC; the occupied range is
// inclusive of both endpoints.
type Reservation struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	TransactionID string    `json:"transaction_id" bson:"transaction_id"`
	Name          string    `json:"name" bson:"name"`
	Email         string    `json:"email" bson:"email"`
	StartDate     time.Time `json:"start_date" bson:"start_date"`
	EndDate       time.Time `json:"end_date" bson:"end_date"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// BookingRequest carries the inbound payload for booking and modifying a
// reservation. Dates use the 2006-01-02 wire format.
type BookingRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

// DayAvailability reports whether a single calendar day is free.
type DayAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}
