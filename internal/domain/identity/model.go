package identity

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hospital/hms/internal/platform/auth"
)

// User is the identity shared by every account. Password is accepted on
// input only and never serialized back.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" validate:"required,max=200"`
	Email        string    `json:"email" validate:"required,email,max=320"`
	Password     string    `json:"password,omitempty"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Redact clears input-only secrets before the user is written to a response.
func (u *User) Redact() {
	u.Password = ""
}

type Patient struct {
	User
	DateOfBirth       pgtype.Date `json:"dateOfBirth"`
	Address           string      `json:"address"`
	EmergencyContact  string      `json:"emergencyContact"`
	BloodType         string      `json:"bloodType" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies         []string    `json:"allergies"`
	Medications       []string    `json:"medications"`
	MedicalHistory    []string    `json:"medicalHistory"`
	InsuranceProvider string      `json:"insuranceProvider"`
	PolicyNumber      string      `json:"policyNumber"`
	GroupNumber       string      `json:"groupNumber"`
}

type Doctor struct {
	User
	Specialization    string         `json:"specialization" validate:"required"`
	Department        string         `json:"department" validate:"required"`
	LicenseNumber     string         `json:"licenseNumber" validate:"required"`
	YearsOfExperience int            `json:"yearsOfExperience" validate:"gte=0"`
	ConsultationFee   pgtype.Numeric `json:"consultationFee"`
	Bio               string         `json:"bio"`
	Education         []string       `json:"education"`
	Certifications    []string       `json:"certifications"`
	Languages         []string       `json:"languages"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by login and registration.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
