package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
	"github.com/hospital/hms/internal/platform/db"
	"github.com/hospital/hms/pkg/pagination"
)

// translate maps storage faults onto the apperr taxonomy.
func translate(entity string, err error) error {
	if db.IsNoRows(err) {
		return apperr.NotFound(entity)
	}
	if constraint, ok := db.UniqueViolation(err); ok {
		switch constraint {
		case "users_email_key":
			return apperr.Conflict("email is already registered")
		case "doctors_license_number_key":
			return apperr.Conflict("license number is already registered")
		}
		return apperr.Conflict("%s already exists", entity)
	}
	return err
}

func page(limit, offset int) string {
	return pagination.Params{Limit: limit, Offset: offset}.SQL()
}

// -- User Repository --

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `u.id, u.name, u.email, u.password_hash, u.phone, u.role, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func insertUser(ctx context.Context, q db.Querier, u *User) error {
	return q.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.Phone, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func updateUser(ctx context.Context, q db.Querier, u *User) error {
	err := q.QueryRow(ctx, `
		UPDATE users SET name=$2, email=$3, password_hash=$4, phone=$5, updated_at=NOW()
		WHERE id = $1 AND role = $6
		RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.Role,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return err
}

func deleteUser(ctx context.Context, q db.Querier, id int64, role auth.Role) error {
	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1 AND role = $2`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if err := insertUser(ctx, r.conn(ctx), u); err != nil {
		return translate("user", err)
	}
	return nil
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		return nil, translate("user", err)
	}
	return u, nil
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users u WHERE lower(u.email) = lower($1)`, email))
	if err != nil {
		return nil, translate("user", err)
	}
	return u, nil
}

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = userCols + `,
	p.date_of_birth, p.address, p.emergency_contact, p.blood_type,
	p.allergies, p.medications, p.medical_history,
	p.insurance_provider, p.policy_number, p.group_number`

const patientFrom = ` FROM users u JOIN patients p ON p.user_id = u.id`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Phone, &p.Role, &p.CreatedAt, &p.UpdatedAt,
		&p.DateOfBirth, &p.Address, &p.EmergencyContact, &p.BloodType,
		&p.Allergies, &p.Medications, &p.MedicalHistory,
		&p.InsuranceProvider, &p.PolicyNumber, &p.GroupNumber,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.Role = auth.RolePatient
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := r.conn(ctx)
		if err := insertUser(ctx, q, &p.User); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `
			INSERT INTO patients (
				user_id, date_of_birth, address, emergency_contact, blood_type,
				allergies, medications, medical_history,
				insurance_provider, policy_number, group_number
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			p.ID, p.DateOfBirth, p.Address, p.EmergencyContact, p.BloodType,
			nonNil(p.Allergies), nonNil(p.Medications), nonNil(p.MedicalHistory),
			p.InsuranceProvider, p.PolicyNumber, p.GroupNumber,
		)
		return err
	})
	if err != nil {
		return translate("patient", err)
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+patientFrom+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, translate("patient", err)
	}
	return p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	p.Role = auth.RolePatient
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := r.conn(ctx)
		if err := updateUser(ctx, q, &p.User); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `
			UPDATE patients SET
				date_of_birth=$2, address=$3, emergency_contact=$4, blood_type=$5,
				allergies=$6, medications=$7, medical_history=$8,
				insurance_provider=$9, policy_number=$10, group_number=$11
			WHERE user_id = $1`,
			p.ID, p.DateOfBirth, p.Address, p.EmergencyContact, p.BloodType,
			nonNil(p.Allergies), nonNil(p.Medications), nonNil(p.MedicalHistory),
			p.InsuranceProvider, p.PolicyNumber, p.GroupNumber,
		)
		return err
	})
	if err != nil {
		return translate("patient", err)
	}
	return nil
}

// Delete removes the users row; the patients row follows by cascade.
func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	if err := deleteUser(ctx, r.conn(ctx), id, auth.RolePatient); err != nil {
		return translate("patient", err)
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+patientFrom).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+patientFrom+` ORDER BY u.id`+page(limit, offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// -- Doctor Repository --

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const doctorCols = userCols + `,
	d.specialization, d.department, d.license_number, d.years_of_experience,
	d.consultation_fee, d.bio, d.education, d.certifications, d.languages`

const doctorFrom = ` FROM users u JOIN doctors d ON d.user_id = u.id`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.Phone, &d.Role, &d.CreatedAt, &d.UpdatedAt,
		&d.Specialization, &d.Department, &d.LicenseNumber, &d.YearsOfExperience,
		&d.ConsultationFee, &d.Bio, &d.Education, &d.Certifications, &d.Languages,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.Role = auth.RoleDoctor
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := r.conn(ctx)
		if err := insertUser(ctx, q, &d.User); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `
			INSERT INTO doctors (
				user_id, specialization, department, license_number, years_of_experience,
				consultation_fee, bio, education, certifications, languages
			) VALUES ($1,$2,$3,$4,$5,COALESCE($6::numeric, 0),$7,$8,$9,$10)`,
			d.ID, d.Specialization, d.Department, d.LicenseNumber, d.YearsOfExperience,
			d.ConsultationFee, d.Bio, nonNil(d.Education), nonNil(d.Certifications), nonNil(d.Languages),
		)
		return err
	})
	if err != nil {
		return translate("doctor", err)
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+doctorFrom+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, translate("doctor", err)
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	d.Role = auth.RoleDoctor
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := r.conn(ctx)
		if err := updateUser(ctx, q, &d.User); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `
			UPDATE doctors SET
				specialization=$2, department=$3, license_number=$4, years_of_experience=$5,
				consultation_fee=COALESCE($6::numeric, 0), bio=$7, education=$8, certifications=$9, languages=$10
			WHERE user_id = $1`,
			d.ID, d.Specialization, d.Department, d.LicenseNumber, d.YearsOfExperience,
			d.ConsultationFee, d.Bio, nonNil(d.Education), nonNil(d.Certifications), nonNil(d.Languages),
		)
		return err
	})
	if err != nil {
		return translate("doctor", err)
	}
	return nil
}

func (r *doctorRepoPG) Delete(ctx context.Context, id int64) error {
	if err := deleteUser(ctx, r.conn(ctx), id, auth.RoleDoctor); err != nil {
		return translate("doctor", err)
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return r.list(ctx, "", nil, limit, offset)
}

func (r *doctorRepoPG) ListByDepartment(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	return r.list(ctx, ` WHERE lower(d.department) = lower($1)`, []interface{}{department}, limit, offset)
}

func (r *doctorRepoPG) ListBySpecialization(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	return r.list(ctx, ` WHERE lower(d.specialization) = lower($1)`, []interface{}{specialization}, limit, offset)
}

func (r *doctorRepoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+doctorFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count doctors: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+doctorCols+doctorFrom+where+` ORDER BY u.id`+page(limit, offset), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
