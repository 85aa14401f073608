package clinical

import (
	"context"
	"strings"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/validate"
)

// Directory resolves the patient and doctor a record refers to.
type Directory interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
	DoctorExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	records MedicalRecordRepository
	people  Directory
	now     func() time.Time
}

func NewService(records MedicalRecordRepository, people Directory) *Service {
	return &Service{records: records, people: people, now: time.Now}
}

func (s *Service) check(ctx context.Context, m *MedicalRecord) error {
	m.Diagnosis = strings.TrimSpace(m.Diagnosis)
	m.Treatment = strings.TrimSpace(m.Treatment)
	if err := validate.Struct(m); err != nil {
		return err
	}
	if m.FollowUpDate.Valid && m.RecordDate.Valid && m.FollowUpDate.Time.Before(m.RecordDate.Time) {
		return apperr.Invalid("followUpDate must not be before recordDate")
	}

	ok, err := s.people.PatientExists(ctx, m.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("patient")
	}
	ok, err = s.people.DoctorExists(ctx, m.DoctorID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("doctor")
	}
	return nil
}

// CreateRecord stores m, dating it today when no record date is given.
func (s *Service) CreateRecord(ctx context.Context, m *MedicalRecord) error {
	if !m.RecordDate.Valid {
		y, mo, d := s.now().Date()
		m.RecordDate.Time = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		m.RecordDate.Valid = true
	}
	if err := s.check(ctx, m); err != nil {
		return err
	}
	return s.records.Create(ctx, m)
}

func (s *Service) GetRecord(ctx context.Context, id int64) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) UpdateRecord(ctx context.Context, id int64, m *MedicalRecord) error {
	if _, err := s.records.GetByID(ctx, id); err != nil {
		return err
	}
	if !m.RecordDate.Valid {
		return apperr.Invalid("recordDate is required")
	}
	if err := s.check(ctx, m); err != nil {
		return err
	}
	m.ID = id
	return s.records.Update(ctx, m)
}

func (s *Service) DeleteRecord(ctx context.Context, id int64) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByDoctor(ctx, doctorID, limit, offset)
}
