package billing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/db"
	"github.com/hospital/hms/pkg/pagination"
)

type billRepoPG struct {
	pool *pgxpool.Pool
}

func NewBillRepo(pool *pgxpool.Pool) BillRepository {
	return &billRepoPG{pool: pool}
}

func (r *billRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const billCols = `id, patient_id, amount, status, bill_date, description, created_at, updated_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	if err := row.Scan(&b.ID, &b.PatientID, &b.Amount, &b.Status, &b.BillDate, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *billRepoPG) Create(ctx context.Context, b *Bill) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bills (patient_id, amount, status, bill_date, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		b.PatientID, b.Amount, b.Status, b.BillDate, b.Description,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *billRepoPG) GetByID(ctx context.Context, id int64) (*Bill, error) {
	b, err := scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bills WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("bill")
		}
		return nil, err
	}
	return b, nil
}

func (r *billRepoPG) Update(ctx context.Context, b *Bill) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE bills SET patient_id=$2, amount=$3, status=$4, bill_date=$5, description=$6, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		b.ID, b.PatientID, b.Amount, b.Status, b.BillDate, b.Description,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("bill")
	}
	return err
}

func (r *billRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("bill")
	}
	return nil
}

func (r *billRepoPG) List(ctx context.Context, limit, offset int) ([]*Bill, int, error) {
	return r.list(ctx, "", nil, limit, offset)
}

func (r *billRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Bill, int, error) {
	return r.list(ctx, ` WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *billRepoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Bill, int, error) {
	return r.list(ctx, ` WHERE status = $1`, []interface{}{status}, limit, offset)
}

func (r *billRepoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Bill, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bills`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bills: %w", err)
	}

	q := `SELECT ` + billCols + ` FROM bills` + where + ` ORDER BY bill_date DESC, id DESC` +
		pagination.Params{Limit: limit, Offset: offset}.SQL()
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var items []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}
