package billing

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

type Bill struct {
	ID          int64          `json:"id"`
	PatientID   int64          `json:"patientId" validate:"required,gt=0"`
	Amount      pgtype.Numeric `json:"amount"`
	Status      string         `json:"status" validate:"omitempty,oneof=pending paid overdue cancelled"`
	BillDate    pgtype.Date    `json:"billDate"`
	Description string         `json:"description" validate:"max=2000"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ValidStatus reports whether s is one of the bill statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}
