package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
	"github.com/hospital/hms/internal/platform/validate"
)

var errBadCredentials = &apperr.Error{Kind: apperr.ErrUnauthorized, Msg: "invalid email or password"}

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

type Service struct {
	users    UserRepository
	patients PatientRepository
	doctors  DoctorRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
}

func NewService(users UserRepository, patients PatientRepository, doctors DoctorRepository, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, patients: patients, doctors: doctors, hasher: hasher, tokens: tokens}
}

// setPassword hashes u.Password into u.PasswordHash and clears the plaintext.
// An empty password leaves the existing hash untouched.
func (s *Service) setPassword(u *User) error {
	if u.Password == "" {
		return nil
	}
	if len(u.Password) > maxPasswordBytes {
		return apperr.Invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	hash, err := s.hasher.Hash(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Password = ""
	return nil
}

// normalize trims input; emails are stored lowercase so the unique
// constraint matches the case-insensitive login lookup.
func normalize(u *User) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// -- Authentication --

func (s *Service) Login(ctx context.Context, cr Credentials) (*Session, error) {
	if err := validate.Struct(&cr); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(cr.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := s.hasher.Verify(u.PasswordHash, cr.Password); err != nil {
		return nil, errBadCredentials
	}
	return s.session(u)
}

// Register creates a PATIENT account and signs it in.
func (s *Service) Register(ctx context.Context, p *Patient) (*Session, error) {
	if p.Password == "" {
		return nil, apperr.Invalid("password is required")
	}
	if len(p.Password) < 8 {
		return nil, apperr.Invalid("password must be at least 8 characters")
	}
	if err := s.CreatePatient(ctx, p); err != nil {
		return nil, err
	}
	return s.session(&p.User)
}

func (s *Service) session(u *User) (*Session, error) {
	token, exp, err := s.tokens.Issue(u.ID, u.Role, u.Name)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}, nil
}

func (s *Service) Me(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// CreateAdmin bootstraps an ADMIN account; a password is mandatory.
func (s *Service) CreateAdmin(ctx context.Context, u *User) error {
	normalize(u)
	if err := validate.Struct(u); err != nil {
		return err
	}
	if u.Password == "" {
		return apperr.Invalid("password is required")
	}
	u.Role = auth.RoleAdmin
	if err := s.setPassword(u); err != nil {
		return err
	}
	return s.users.Create(ctx, u)
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	normalize(&p.User)
	if err := validate.Struct(p); err != nil {
		return err
	}
	p.ID = 0
	p.Role = auth.RolePatient
	if err := s.setPassword(&p.User); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// UpdatePatient overwrites every mutable field of patient id with p.
func (s *Service) UpdatePatient(ctx context.Context, id int64, p *Patient) error {
	existing, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	normalize(&p.User)
	if err := validate.Struct(p); err != nil {
		return err
	}
	p.ID = id
	p.Role = auth.RolePatient
	p.PasswordHash = existing.PasswordHash
	if err := s.setPassword(&p.User); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.patients.Delete(ctx, id)
}

// PatientExists reports whether a patient account with id exists.
func (s *Service) PatientExists(ctx context.Context, id int64) (bool, error) {
	return exists(s.patients.GetByID(ctx, id))
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	normalize(&d.User)
	if err := checkDoctor(d); err != nil {
		return err
	}
	d.ID = 0
	d.Role = auth.RoleDoctor
	if err := s.setPassword(&d.User); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func (s *Service) ListDoctorsByDepartment(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.ListByDepartment(ctx, department, limit, offset)
}

func (s *Service) ListDoctorsBySpecialization(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.ListBySpecialization(ctx, specialization, limit, offset)
}

func (s *Service) UpdateDoctor(ctx context.Context, id int64, d *Doctor) error {
	existing, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	normalize(&d.User)
	if err := checkDoctor(d); err != nil {
		return err
	}
	d.ID = id
	d.Role = auth.RoleDoctor
	d.PasswordHash = existing.PasswordHash
	if err := s.setPassword(&d.User); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func checkDoctor(d *Doctor) error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	if d.ConsultationFee.Valid {
		return validate.Money("consultationFee", d.ConsultationFee, false)
	}
	return nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) DoctorExists(ctx context.Context, id int64) (bool, error) {
	return exists(s.doctors.GetByID(ctx, id))
}

func exists[T any](_ *T, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return false, err
}
