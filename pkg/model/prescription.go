package model

import "time"

// Medication is one line item on a prescription.
type Medication struct {
	Name         string `json:"name" bson:"name" validate:"required,min=1,max=200"`
	Dose         string `json:"dose" bson:"dose" validate:"required,max=100"`
	Frequency    string `json:"frequency" bson:"frequency" validate:"required,max=100"`
	Duration     string `json:"duration" bson:"duration" validate:"required,max=100"`
	Instructions string `json:"instructions,omitempty" bson:"instructions,omitempty" validate:"omitempty,max=1000"`
}

// Prescription references exactly one appointment and is issued by the
// doctor who owns it. At least one medication line is required.
type Prescription struct {
	ID            string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AppointmentID string       `json:"appointment_id" bson:"appointment_id" validate:"required,mongodb"`
	DoctorID      string       `json:"doctor_id" bson:"doctor_id" validate:"required,mongodb"`
	PatientID     string       `json:"patient_id" bson:"patient_id" validate:"required,mongodb"`
	Medications   []Medication `json:"medications" bson:"medications" validate:"required,min=1,dive"`
	Notes         string       `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=5000"`
	IssuedAt      time.Time    `json:"issued_at" bson:"issued_at"`
}

// PrescriptionView joins the prescription with identity projections.
type PrescriptionView struct {
	Prescription `bson:",inline"`
	Patient      UserSummary `json:"patient" bson:"patient"`
	Doctor       UserSummary `json:"doctor" bson:"doctor"`
}
