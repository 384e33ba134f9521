package model

import "time"

// SlotLock is an advisory lock keyed by (doctor, date, start time). Inserting
// a second lock for the same slot hits the _id unique constraint, which is
// how concurrent booking attempts serialize before the occupancy check.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
