package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	// ErrSlotTaken surfaces both the advisory lock collision and the
	// partial unique index on (doctor_id, date, start_time).
	ErrSlotTaken = errors.New("time slot is already booked")
)
