// Package reporting computes the dashboard summary. Figures are recomputed on
// every request.
package reporting

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
)

// TrendDays is the length of the appointment trend window, today included.
const TrendDays = 7

const dayLayout = "2006-01-02"

type Totals struct {
	Patients          int
	Doctors           int
	TodayAppointments int
	PendingBills      int
}

// Source supplies the raw figures behind the dashboard.
type Source interface {
	Totals(ctx context.Context, today time.Time) (Totals, error)
	// AppointmentsPerDay counts appointments per calendar day in [from, to],
	// keyed by YYYY-MM-DD. Days without appointments may be absent.
	AppointmentsPerDay(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Dashboard struct {
	TotalPatients     int        `json:"totalPatients"`
	TotalDoctors      int        `json:"totalDoctors"`
	TodayAppointments int        `json:"todayAppointments"`
	PendingBills      int        `json:"pendingBills"`
	AppointmentTrends []DayCount `json:"appointmentTrends"`
}

type Service struct {
	src Source
	now func() time.Time
}

func NewService(src Source) *Service {
	return &Service{src: src, now: time.Now}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Dashboard builds the summary as of the local calendar day of the clock.
// The trend runs oldest first and is zero-filled.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	today := startOfDay(s.now())
	from := today.AddDate(0, 0, -(TrendDays - 1))

	totals, err := s.src.Totals(ctx, today)
	if err != nil {
		return nil, err
	}
	perDay, err := s.src.AppointmentsPerDay(ctx, from, today)
	if err != nil {
		return nil, err
	}

	trend := make([]DayCount, 0, TrendDays)
	for i := 0; i < TrendDays; i++ {
		day := from.AddDate(0, 0, i).Format(dayLayout)
		trend = append(trend, DayCount{Date: day, Count: perDay[day]})
	}

	return &Dashboard{
		TotalPatients:     totals.Patients,
		TotalDoctors:      totals.Doctors,
		TodayAppointments: totals.TodayAppointments,
		PendingBills:      totals.PendingBills,
		AppointmentTrends: trend,
	}, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/api/dashboard", h.GetDashboard, auth.Require(auth.Authenticated()))
}

func (h *Handler) GetDashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}
