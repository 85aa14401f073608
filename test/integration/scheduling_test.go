//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hospital/hms/internal/domain/scheduling"
	"github.com/hospital/hms/internal/platform/apperr"
)

func TestAppointmentLifecycle(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	p := s.patient(t, "Pat", "pat@example.com")
	d := s.doctor(t, "Doc", "doc@example.com", "LIC-1", "General")
	notes := "bring x-rays"

	today := &scheduling.Appointment{
		PatientID: p.ID, DoctorID: d.ID,
		AppointmentDate: scheduling.Day(time.Now()),
		AppointmentTime: "14:05",
		Reason:          "checkup",
		Notes:           &notes,
	}
	if err := s.appointments.CreateAppointment(ctx, today); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if today.Status != scheduling.StatusScheduled {
		t.Errorf("expected default status scheduled, got %q", today.Status)
	}

	later := &scheduling.Appointment{
		PatientID: p.ID, DoctorID: d.ID,
		AppointmentDate: scheduling.Day(time.Now().AddDate(0, 0, 7)),
		AppointmentTime: "08:00",
		Reason:          "follow-up",
	}
	if err := s.appointments.CreateAppointment(ctx, later); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	t.Run("Get", func(t *testing.T) {
		got, err := s.appointments.GetAppointment(ctx, today.ID)
		if err != nil {
			t.Fatalf("GetAppointment: %v", err)
		}
		if got.AppointmentTime != "14:05" {
			t.Errorf("expected 14:05, got %q", got.AppointmentTime)
		}
		if got.Notes == nil || *got.Notes != notes {
			t.Errorf("notes not persisted: %v", got.Notes)
		}
		if got.Department != nil {
			t.Errorf("expected null department, got %q", *got.Department)
		}
	})

	t.Run("Today", func(t *testing.T) {
		items, total, err := s.appointments.ListToday(ctx, 20, 0)
		if err != nil {
			t.Fatalf("ListToday: %v", err)
		}
		if total != 1 || items[0].ID != today.ID {
			t.Errorf("expected only today's appointment, got %d", total)
		}
	})

	t.Run("ByPatientAndDoctor", func(t *testing.T) {
		_, total, err := s.appointments.ListByPatient(ctx, p.ID, 20, 0)
		if err != nil || total != 2 {
			t.Errorf("ListByPatient: total=%d err=%v", total, err)
		}
		_, total, err = s.appointments.ListByDoctor(ctx, d.ID, 20, 0)
		if err != nil || total != 2 {
			t.Errorf("ListByDoctor: total=%d err=%v", total, err)
		}
		_, total, err = s.appointments.ListByDoctor(ctx, d.ID+100, 20, 0)
		if err != nil || total != 0 {
			t.Errorf("ListByDoctor unknown: total=%d err=%v", total, err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		upd := *later
		upd.Status = scheduling.StatusConfirmed
		upd.AppointmentTime = "08:30"
		if err := s.appointments.UpdateAppointment(ctx, later.ID, &upd); err != nil {
			t.Fatalf("UpdateAppointment: %v", err)
		}
		got, _ := s.appointments.GetAppointment(ctx, later.ID)
		if got.Status != scheduling.StatusConfirmed || got.AppointmentTime != "08:30" {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("UnknownDoctor", func(t *testing.T) {
		bad := &scheduling.Appointment{
			PatientID: p.ID, DoctorID: d.ID + 100,
			AppointmentDate: scheduling.Day(time.Now()),
			AppointmentTime: "10:00",
			Reason:          "x",
		}
		if err := s.appointments.CreateAppointment(ctx, bad); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.appointments.DeleteAppointment(ctx, later.ID); err != nil {
			t.Fatalf("DeleteAppointment: %v", err)
		}
		if err := s.appointments.DeleteAppointment(ctx, later.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}
