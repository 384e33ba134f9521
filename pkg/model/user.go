package model

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Requester is the authenticated actor behind a request. Every service
// operation receives one and applies its own access predicate.
type Requester struct {
	ID   string
	Role Role
}

// User is the directory record for patients, doctors and admins.
// PasswordHash is bson-only and must never reach a JSON response.
type User struct {
	ID             string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Role           Role               `json:"role" bson:"role" validate:"required,oneof=patient doctor admin"`
	Name           string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email          string             `json:"email" bson:"email" validate:"required,email"`
	PasswordHash   string             `json:"-" bson:"password_hash" validate:"required"`
	Phone          string             `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,max=20"`
	DOB            *time.Time         `json:"dob,omitempty" bson:"dob,omitempty"`
	Gender         string             `json:"gender,omitempty" bson:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Address        string             `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=200"`
	MedicalHistory string             `json:"medical_history,omitempty" bson:"medical_history,omitempty" validate:"omitempty,max=5000"`
	Specialization string             `json:"specialization,omitempty" bson:"specialization,omitempty" validate:"omitempty,max=100"`
	Availability   []AvailabilitySlot `json:"availability_slots,omitempty" bson:"availability_slots,omitempty" validate:"omitempty,dive"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// AvailabilitySlot is a weekly recurring window a doctor accepts bookings in.
type AvailabilitySlot struct {
	DayOfWeek int    `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" bson:"start_time" validate:"required,clocktime"`
	EndTime   string `json:"end_time" bson:"end_time" validate:"required,clocktime"`
}

// UserUpdate is the patch shape for profile edits. Credential and role
// fields are deliberately absent.
type UserUpdate struct {
	Name           string     `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone          *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	DOB            *time.Time `json:"dob,omitempty"`
	Gender         string     `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Address        *string    `json:"address,omitempty" validate:"omitempty,max=200"`
	MedicalHistory *string    `json:"medical_history,omitempty" validate:"omitempty,max=5000"`
}

// UserSummary is the identity projection joined onto appointments and
// prescriptions. It carries no credential or medical fields.
type UserSummary struct {
	ID             string `json:"id" bson:"_id"`
	Name           string `json:"name" bson:"name"`
	Role           Role   `json:"role" bson:"role"`
	Specialization string `json:"specialization,omitempty" bson:"specialization,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Role:           u.Role,
		Specialization: u.Specialization,
	}
}
