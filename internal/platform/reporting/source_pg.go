package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/db"
)

type pgSource struct {
	pool *pgxpool.Pool
}

func NewPGSource(pool *pgxpool.Pool) Source {
	return &pgSource{pool: pool}
}

func date(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func (s *pgSource) Totals(ctx context.Context, today time.Time) (Totals, error) {
	var t Totals
	err := db.Conn(ctx, s.pool).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM doctors),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = $1),
			(SELECT COUNT(*) FROM bills WHERE status = 'pending')`,
		date(today),
	).Scan(&t.Patients, &t.Doctors, &t.TodayAppointments, &t.PendingBills)
	if err != nil {
		return Totals{}, fmt.Errorf("dashboard totals: %w", err)
	}
	return t, nil
}

func (s *pgSource) AppointmentsPerDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	rows, err := db.Conn(ctx, s.pool).Query(ctx, `
		SELECT appointment_date, COUNT(*)
		FROM appointments
		WHERE appointment_date BETWEEN $1 AND $2
		GROUP BY appointment_date`,
		date(from), date(to),
	)
	if err != nil {
		return nil, fmt.Errorf("appointment trend: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			day pgtype.Date
			n   int
		)
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		out[day.Time.Format(dayLayout)] = n
	}
	return out, rows.Err()
}
