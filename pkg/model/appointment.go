package model

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status frees the slot. Completed and
// cancelled appointments no longer occupy (doctor, date, start_time).
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment is the scheduling record. PatientID and DoctorID are fixed at
// creation; Date is a provider-local calendar date stored at UTC midnight;
// StartTime and EndTime are 24-hour HH:mm wall-clock strings.
type Appointment struct {
	ID        string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PatientID string            `json:"patient_id" bson:"patient_id" validate:"required,mongodb"`
	DoctorID  string            `json:"doctor_id" bson:"doctor_id" validate:"required,mongodb"`
	Date      time.Time         `json:"date" bson:"date" validate:"required"`
	StartTime string            `json:"start_time" bson:"start_time" validate:"required,clocktime"`
	EndTime   string            `json:"end_time" bson:"end_time" validate:"required,clocktime"`
	Status    AppointmentStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	Reason    string            `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=1000"`
	Notes     string            `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=5000"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// AppointmentUpdate is the reschedule/edit patch. Identity and status fields
// are not part of it; status moves only through the transition operation.
type AppointmentUpdate struct {
	Date      *time.Time `json:"date,omitempty"`
	StartTime string     `json:"start_time,omitempty" validate:"omitempty,clocktime"`
	EndTime   string     `json:"end_time,omitempty" validate:"omitempty,clocktime"`
	Reason    *string    `json:"reason,omitempty" validate:"omitempty,max=1000"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// AppointmentView is what the API returns: the appointment joined with
// lightweight identity projections of both parties.
type AppointmentView struct {
	Appointment `bson:",inline"`
	Patient     UserSummary `json:"patient" bson:"patient"`
	Doctor      UserSummary `json:"doctor" bson:"doctor"`
}

// AppointmentFilter narrows role-scoped listings.
type AppointmentFilter struct {
	Status       AppointmentStatus
	UpcomingOnly bool
}
