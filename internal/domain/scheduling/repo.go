package scheduling

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*Appointment, int, error)
	ListByDate(ctx context.Context, date pgtype.Date, limit, offset int) ([]*Appointment, int, error)
}
