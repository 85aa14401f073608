package clinical

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/db"
	"github.com/hospital/hms/pkg/pagination"
)

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewMedicalRecordRepo(pool *pgxpool.Pool) MedicalRecordRepository {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const recordCols = `id, patient_id, doctor_id, record_date, diagnosis, treatment,
	medications, notes, follow_up_date, created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.RecordDate, &m.Diagnosis, &m.Treatment,
		&m.Medications, &m.Notes, &m.FollowUpDate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func medications(m *MedicalRecord) []string {
	if m.Medications == nil {
		return []string{}
	}
	return m.Medications
}

func (r *recordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_records (patient_id, doctor_id, record_date, diagnosis, treatment, medications, notes, follow_up_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		m.PatientID, m.DoctorID, m.RecordDate, m.Diagnosis, m.Treatment, medications(m), m.Notes, m.FollowUpDate,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *recordRepoPG) GetByID(ctx context.Context, id int64) (*MedicalRecord, error) {
	m, err := scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("medical record")
		}
		return nil, err
	}
	return m, nil
}

func (r *recordRepoPG) Update(ctx context.Context, m *MedicalRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE medical_records SET
			patient_id=$2, doctor_id=$3, record_date=$4, diagnosis=$5, treatment=$6,
			medications=$7, notes=$8, follow_up_date=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		m.ID, m.PatientID, m.DoctorID, m.RecordDate, m.Diagnosis, m.Treatment,
		medications(m), m.Notes, m.FollowUpDate,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("medical record")
	}
	return err
}

func (r *recordRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medical record")
	}
	return nil
}

func (r *recordRepoPG) List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, "", nil, ` ORDER BY id`, limit, offset)
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, ` WHERE patient_id = $1`, []interface{}{patientID}, ` ORDER BY record_date DESC, id DESC`, limit, offset)
}

func (r *recordRepoPG) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, ` WHERE doctor_id = $1`, []interface{}{doctorID}, ` ORDER BY record_date DESC, id DESC`, limit, offset)
}

func (r *recordRepoPG) list(ctx context.Context, where string, args []interface{}, order string, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medical records: %w", err)
	}

	q := `SELECT ` + recordCols + ` FROM medical_records` + where + order + pagination.Params{Limit: limit, Offset: offset}.SQL()
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list medical records: %w", err)
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
