// Package errors holds the sentinel errors returned by the reservation store.
package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrDuplicateTransactionID = errors.New("transaction id already exists")
)
