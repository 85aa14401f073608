package scheduling

import (
	"context"
	"strings"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/validate"
)

// Directory resolves the patient and doctor accounts an appointment refers to.
type Directory interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
	DoctorExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	appointments AppointmentRepository
	people       Directory
	now          func() time.Time
}

func NewService(appointments AppointmentRepository, people Directory) *Service {
	return &Service{appointments: appointments, people: people, now: time.Now}
}

func (s *Service) check(ctx context.Context, a *Appointment) error {
	a.Reason = strings.TrimSpace(a.Reason)
	if err := validate.Struct(a); err != nil {
		return err
	}
	if !a.AppointmentDate.Valid {
		return apperr.Invalid("appointmentDate is required")
	}

	ok, err := s.people.PatientExists(ctx, a.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("patient")
	}
	ok, err = s.people.DoctorExists(ctx, a.DoctorID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("doctor")
	}
	return nil
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if err := s.check(ctx, a); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateAppointment overwrites appointment id with a. An empty status keeps
// the stored one.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, a *Appointment) error {
	existing, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.check(ctx, a); err != nil {
		return err
	}
	a.ID = id
	if a.Status == "" {
		a.Status = existing.Status
	}
	return s.appointments.Update(ctx, a)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.appointments.Delete(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}

// ListToday returns appointments dated on the current local calendar day.
func (s *Service) ListToday(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDate(ctx, Day(s.now()), limit, offset)
}
