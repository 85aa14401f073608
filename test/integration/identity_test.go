//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hospital/hms/internal/domain/identity"
	"github.com/hospital/hms/internal/domain/scheduling"
	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
)

func TestPatientCRUD(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	p := s.patient(t, "Jane Doe", "Jane@Example.com")
	if p.ID == 0 {
		t.Fatal("expected generated id")
	}

	t.Run("Get", func(t *testing.T) {
		got, err := s.people.GetPatient(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPatient: %v", err)
		}
		if got.Email != "jane@example.com" {
			t.Errorf("expected normalized email, got %q", got.Email)
		}
		if got.Role != auth.RolePatient {
			t.Errorf("expected PATIENT role, got %s", got.Role)
		}
		if len(got.Allergies) != 1 || got.Allergies[0] != "penicillin" {
			t.Errorf("unexpected allergies %v", got.Allergies)
		}
	})

	t.Run("Update", func(t *testing.T) {
		upd := &identity.Patient{
			User:      identity.User{Name: "Jane Smith", Email: "jane@example.com"},
			Address:   "1 Main St",
			BloodType: "A-",
		}
		if err := s.people.UpdatePatient(ctx, p.ID, upd); err != nil {
			t.Fatalf("UpdatePatient: %v", err)
		}
		got, _ := s.people.GetPatient(ctx, p.ID)
		if got.Name != "Jane Smith" || got.Address != "1 Main St" || got.BloodType != "A-" {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		dup := &identity.Patient{User: identity.User{Name: "Other", Email: "jane@example.com"}}
		err := s.people.CreatePatient(ctx, dup)
		if !errors.Is(err, apperr.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		s.patient(t, "John Roe", "john@example.com")
		items, total, err := s.people.ListPatients(ctx, 1, 0)
		if err != nil {
			t.Fatalf("ListPatients: %v", err)
		}
		if total != 2 || len(items) != 1 {
			t.Errorf("expected 1 of 2, got %d of %d", len(items), total)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.people.DeletePatient(ctx, p.ID); err != nil {
			t.Fatalf("DeletePatient: %v", err)
		}
		if _, err := s.people.GetPatient(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found after delete, got %v", err)
		}
		if err := s.people.DeletePatient(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found on second delete, got %v", err)
		}
	})
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	sess, err := s.people.Register(ctx, &identity.Patient{
		User: identity.User{Name: "Reg", Email: "reg@example.com", Password: "s3cretpass"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.Token == "" || sess.Role != auth.RolePatient {
		t.Fatalf("unexpected session %+v", sess)
	}

	if _, err := s.people.Login(ctx, identity.Credentials{Email: "REG@example.com", Password: "s3cretpass"}); err != nil {
		t.Errorf("Login: %v", err)
	}
	if _, err := s.people.Login(ctx, identity.Credentials{Email: "reg@example.com", Password: "wrong-pass"}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestCreateAdmin(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	u := &identity.User{Name: "Root", Email: "root@example.com", Password: "adminpass1"}
	if err := s.people.CreateAdmin(ctx, u); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	me, err := s.people.Me(ctx, u.ID)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Role != auth.RoleAdmin {
		t.Errorf("expected ADMIN, got %s", me.Role)
	}
}

func TestDoctorLookups(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	s.doctor(t, "Dr A", "a@example.com", "LIC-1", "Cardiology")
	s.doctor(t, "Dr B", "b@example.com", "LIC-2", "cardiology")
	s.doctor(t, "Dr C", "c@example.com", "LIC-3", "Neurology")

	items, total, err := s.people.ListDoctorsByDepartment(ctx, "CARDIOLOGY", 20, 0)
	if err != nil {
		t.Fatalf("ListDoctorsByDepartment: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 cardiology doctors, got %d", total)
	}

	_, total, err = s.people.ListDoctorsBySpecialization(ctx, "cardiology", 20, 0)
	if err != nil {
		t.Fatalf("ListDoctorsBySpecialization: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 cardiologists, got %d", total)
	}

	dup := &identity.Doctor{
		User:           identity.User{Name: "Dr D", Email: "d@example.com"},
		Specialization: "X", Department: "Y", LicenseNumber: "LIC-1",
	}
	if err := s.people.CreateDoctor(ctx, dup); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected license conflict, got %v", err)
	}
}

func TestDeleteDoctorWithAppointments(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	p := s.patient(t, "Pat", "pat@example.com")
	d := s.doctor(t, "Doc", "doc@example.com", "LIC-9", "Surgery")

	a := &scheduling.Appointment{
		PatientID:       p.ID,
		DoctorID:        d.ID,
		AppointmentDate: scheduling.Day(time.Now().AddDate(0, 0, 1)),
		AppointmentTime: "09:30",
		Reason:          "consult",
	}
	if err := s.appointments.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	if err := s.people.DeleteDoctor(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDoctor: %v", err)
	}

	got, err := s.appointments.GetAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("appointment should survive doctor removal: %v", err)
	}
	if got.DoctorID != d.ID {
		t.Errorf("expected doctor id %d kept, got %d", d.ID, got.DoctorID)
	}
}
