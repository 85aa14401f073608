package scheduling

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

type Appointment struct {
	ID              int64       `json:"id"`
	PatientID       int64       `json:"patientId" validate:"required,gt=0"`
	DoctorID        int64       `json:"doctorId" validate:"required,gt=0"`
	AppointmentDate pgtype.Date `json:"appointmentDate"`
	AppointmentTime string      `json:"appointmentTime" validate:"required,hhmm"`
	Reason          string      `json:"reason" validate:"required"`
	Notes           *string     `json:"notes"`
	Department      *string     `json:"department"`
	Status          string      `json:"status" validate:"omitempty,oneof=scheduled confirmed completed cancelled no-show"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Day returns the calendar date of t as a pgtype.Date.
func Day(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
