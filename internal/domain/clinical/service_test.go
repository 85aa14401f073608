package clinical

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hospital/hms/internal/platform/apperr"
)

// -- Mock Medical Record Repository --

type mockRecordRepo struct {
	nextID int64
	items  map[int64]*MedicalRecord
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{items: make(map[int64]*MedicalRecord)}
}

func (m *mockRecordRepo) Create(_ context.Context, r *MedicalRecord) error {
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id int64) (*MedicalRecord, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("medical record")
	}
	cp := *r
	return &cp, nil
}

func (m *mockRecordRepo) Update(_ context.Context, r *MedicalRecord) error {
	if _, ok := m.items[r.ID]; !ok {
		return apperr.NotFound("medical record")
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("medical record")
	}
	delete(m.items, id)
	return nil
}

func (m *mockRecordRepo) filter(keep func(*MedicalRecord) bool, newestFirst bool) ([]*MedicalRecord, int, error) {
	var result []*MedicalRecord
	for _, r := range m.items {
		if keep(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if newestFirst {
			return result[i].RecordDate.Time.After(result[j].RecordDate.Time)
		}
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockRecordRepo) List(_ context.Context, _, _ int) ([]*MedicalRecord, int, error) {
	return m.filter(func(*MedicalRecord) bool { return true }, false)
}

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID int64, _, _ int) ([]*MedicalRecord, int, error) {
	return m.filter(func(r *MedicalRecord) bool { return r.PatientID == patientID }, true)
}

func (m *mockRecordRepo) ListByDoctor(_ context.Context, doctorID int64, _, _ int) ([]*MedicalRecord, int, error) {
	return m.filter(func(r *MedicalRecord) bool { return r.DoctorID == doctorID }, true)
}

type mockDirectory struct {
	patients map[int64]bool
	doctors  map[int64]bool
}

func (d *mockDirectory) PatientExists(_ context.Context, id int64) (bool, error) {
	return d.patients[id], nil
}

func (d *mockDirectory) DoctorExists(_ context.Context, id int64) (bool, error) {
	return d.doctors[id], nil
}

var fixedNow = time.Date(2024, 5, 2, 14, 0, 0, 0, time.Local)

func newTestService() (*Service, *mockRecordRepo) {
	repo := newMockRecordRepo()
	svc := NewService(repo, &mockDirectory{
		patients: map[int64]bool{5: true, 6: true},
		doctors:  map[int64]bool{20: true},
	})
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func date(y int, m time.Month, d int) pgtype.Date {
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func newRecord(patientID int64, day pgtype.Date) *MedicalRecord {
	return &MedicalRecord{
		PatientID:   patientID,
		DoctorID:    20,
		RecordDate:  day,
		Diagnosis:   "Hypertension",
		Treatment:   "Lifestyle changes",
		Medications: []string{"Lisinopril 10mg"},
	}
}

func TestService_CreateRecord(t *testing.T) {
	svc, _ := newTestService()
	r := newRecord(5, date(2024, 5, 1))
	if err := svc.CreateRecord(context.Background(), r); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if r.ID == 0 {
		t.Error("expected ID to be set")
	}
}

func TestService_CreateRecord_DefaultsDateToToday(t *testing.T) {
	svc, _ := newTestService()
	r := newRecord(5, pgtype.Date{})
	if err := svc.CreateRecord(context.Background(), r); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if !r.RecordDate.Valid || r.RecordDate.Time.Day() != 2 || r.RecordDate.Time.Month() != time.May {
		t.Errorf("expected record date 2024-05-02, got %+v", r.RecordDate)
	}
}

func TestService_CreateRecord_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*MedicalRecord)
		want   error
	}{
		{"missing diagnosis", func(r *MedicalRecord) { r.Diagnosis = "" }, apperr.ErrValidation},
		{"missing treatment", func(r *MedicalRecord) { r.Treatment = " " }, apperr.ErrValidation},
		{"follow-up before record", func(r *MedicalRecord) { r.FollowUpDate = date(2024, 4, 1) }, apperr.ErrValidation},
		{"unknown patient", func(r *MedicalRecord) { r.PatientID = 99 }, apperr.ErrNotFound},
		{"unknown doctor", func(r *MedicalRecord) { r.DoctorID = 99 }, apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecord(5, date(2024, 5, 1))
			tt.mutate(r)
			if err := svc.CreateRecord(ctx, r); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_ListByPatient_NewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, d := range []pgtype.Date{date(2024, 1, 10), date(2024, 4, 20), date(2024, 2, 5)} {
		svc.CreateRecord(ctx, newRecord(5, d))
	}
	svc.CreateRecord(ctx, newRecord(6, date(2024, 5, 1)))

	items, total, err := svc.ListByPatient(ctx, 5, 0, 0)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 records, got %d", total)
	}
	for i := 1; i < len(items); i++ {
		if items[i].RecordDate.Time.After(items[i-1].RecordDate.Time) {
			t.Errorf("records not ordered newest first: %v then %v", items[i-1].RecordDate.Time, items[i].RecordDate.Time)
		}
	}
}

func TestService_UpdateRecord(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	r := newRecord(5, date(2024, 5, 1))
	svc.CreateRecord(ctx, r)

	upd := newRecord(5, date(2024, 5, 1))
	upd.Diagnosis = "Stage 1 hypertension"
	upd.Medications = nil
	if err := svc.UpdateRecord(ctx, r.ID, upd); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	got := repo.items[r.ID]
	if got.Diagnosis != "Stage 1 hypertension" || len(got.Medications) != 0 {
		t.Errorf("expected full overwrite, got %+v", got)
	}

	if err := svc.UpdateRecord(ctx, 999, upd); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestService_UpdateRecord_NotFound(t *testing.T) {
	svc, repo := newTestService()
	// Not-found wins over the missing record date.
	upd := newRecord(5, pgtype.Date{})
	if err := svc.UpdateRecord(context.Background(), 42, upd); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if len(repo.items) != 0 {
		t.Errorf("expected no record created by a failed update, got %d", len(repo.items))
	}
}

func TestService_DeleteRecord_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.DeleteRecord(context.Background(), 3); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
