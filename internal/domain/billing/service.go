package billing

import (
	"context"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/validate"
)

// PatientDirectory resolves the patient a bill is issued to.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	bills    BillRepository
	patients PatientDirectory
	now      func() time.Time
}

func NewService(bills BillRepository, patients PatientDirectory) *Service {
	return &Service{bills: bills, patients: patients, now: time.Now}
}

func (s *Service) check(ctx context.Context, b *Bill) error {
	if err := validate.Struct(b); err != nil {
		return err
	}
	if err := validate.Money("amount", b.Amount, true); err != nil {
		return err
	}

	ok, err := s.patients.PatientExists(ctx, b.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("patient")
	}
	return nil
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateBill stores b as pending, dated today, unless told otherwise.
func (s *Service) CreateBill(ctx context.Context, b *Bill) error {
	if err := s.check(ctx, b); err != nil {
		return err
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	if !b.BillDate.Valid {
		b.BillDate.Time = s.today()
		b.BillDate.Valid = true
	}
	return s.bills.Create(ctx, b)
}

func (s *Service) GetBill(ctx context.Context, id int64) (*Bill, error) {
	return s.bills.GetByID(ctx, id)
}

// UpdateBill overwrites bill id with b. Status and date are required.
func (s *Service) UpdateBill(ctx context.Context, id int64, b *Bill) error {
	if _, err := s.bills.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.check(ctx, b); err != nil {
		return err
	}
	if b.Status == "" {
		return apperr.Invalid("status is required")
	}
	if !b.BillDate.Valid {
		return apperr.Invalid("billDate is required")
	}
	b.ID = id
	return s.bills.Update(ctx, b)
}

func (s *Service) DeleteBill(ctx context.Context, id int64) error {
	return s.bills.Delete(ctx, id)
}

func (s *Service) ListBills(ctx context.Context, limit, offset int) ([]*Bill, int, error) {
	return s.bills.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Bill, int, error) {
	return s.bills.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Bill, int, error) {
	if !ValidStatus(status) {
		return nil, 0, apperr.Invalid("status must be one of: pending, paid, overdue, cancelled")
	}
	return s.bills.ListByStatus(ctx, status, limit, offset)
}
