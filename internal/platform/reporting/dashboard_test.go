package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospital/hms/internal/platform/auth"
)

type fakeSource struct {
	totals   Totals
	perDay   map[string]int
	err      error
	gotToday time.Time
	gotFrom  time.Time
	gotTo    time.Time
}

func (f *fakeSource) Totals(_ context.Context, today time.Time) (Totals, error) {
	f.gotToday = today
	return f.totals, f.err
}

func (f *fakeSource) AppointmentsPerDay(_ context.Context, from, to time.Time) (map[string]int, error) {
	f.gotFrom, f.gotTo = from, to
	return f.perDay, f.err
}

func newTestService(src Source, now time.Time) *Service {
	svc := NewService(src)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDashboard_EmptyTrendIsZeroFilled(t *testing.T) {
	now := time.Date(2024, 3, 15, 16, 45, 0, 0, time.Local)
	svc := newTestService(&fakeSource{}, now)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, d.AppointmentTrends, TrendDays)

	want := []string{"2024-03-09", "2024-03-10", "2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14", "2024-03-15"}
	for i, dc := range d.AppointmentTrends {
		assert.Equal(t, want[i], dc.Date)
		assert.Zero(t, dc.Count)
	}
}

func TestDashboard_TrendAndTotals(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	src := &fakeSource{
		totals: Totals{Patients: 12, Doctors: 4, TodayAppointments: 3, PendingBills: 2},
		perDay: map[string]int{"2024-02-24": 1, "2024-02-29": 5, "2024-03-01": 3, "2024-02-20": 99},
	}
	svc := newTestService(src, now)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, d.TotalPatients)
	assert.Equal(t, 4, d.TotalDoctors)
	assert.Equal(t, 3, d.TodayAppointments)
	assert.Equal(t, 2, d.PendingBills)

	assert.Equal(t, []DayCount{
		{"2024-02-24", 1},
		{"2024-02-25", 0},
		{"2024-02-26", 0},
		{"2024-02-27", 0},
		{"2024-02-28", 0},
		{"2024-02-29", 5},
		{"2024-03-01", 3},
	}, d.AppointmentTrends)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), src.gotToday)
	assert.Equal(t, time.Date(2024, 2, 24, 0, 0, 0, 0, time.Local), src.gotFrom)
	assert.Equal(t, src.gotToday, src.gotTo)
}

func TestDashboard_SourceError(t *testing.T) {
	svc := newTestService(&fakeSource{err: errors.New("db down")}, time.Now())
	_, err := svc.Dashboard(context.Background())
	assert.Error(t, err)
}

func TestHandler_GetDashboard(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)
	h := NewHandler(newTestService(&fakeSource{totals: Totals{Patients: 1}}, now))

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := auth.Principal{ID: 5, Role: auth.RolePatient}
			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	})
	h.RegisterRoutes(e.Group(""))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, key := range []string{"totalPatients", "totalDoctors", "todayAppointments", "pendingBills", "appointmentTrends"} {
		assert.Contains(t, body, key)
	}
	assert.Len(t, body["appointmentTrends"], TrendDays)
}

func TestHandler_GetDashboard_Unauthenticated(t *testing.T) {
	h := NewHandler(newTestService(&fakeSource{}, time.Now()))
	e := echo.New()
	h.RegisterRoutes(e.Group(""))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
