package clinical

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type MedicalRecord struct {
	ID           int64       `json:"id"`
	PatientID    int64       `json:"patientId" validate:"required,gt=0"`
	DoctorID     int64       `json:"doctorId" validate:"required,gt=0"`
	RecordDate   pgtype.Date `json:"recordDate"`
	Diagnosis    string      `json:"diagnosis" validate:"required"`
	Treatment    string      `json:"treatment" validate:"required"`
	Medications  []string    `json:"medications"`
	Notes        *string     `json:"notes"`
	FollowUpDate pgtype.Date `json:"followUpDate"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
