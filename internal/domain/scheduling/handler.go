package scheduling

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
	"github.com/hospital/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	staff := auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor)

	g.GET("/appointments", h.ListAppointments, staff)
	g.GET("/appointments/today", h.ListToday, staff)
	g.GET("/appointments/patient/:id", h.ListByPatient)
	g.POST("/appointments/patient/:id", h.CreateAppointment)
	g.GET("/appointments/doctor/:id", h.ListByDoctor)
	g.GET("/appointments/:id", h.GetAppointment)
	g.PUT("/appointments/:id", h.UpdateAppointment, staff)
	g.DELETE("/appointments/:id", h.DeleteAppointment, staff)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	patientID, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, auth.AnyOf(auth.Roles(auth.RoleAdmin), auth.Self(auth.RolePatient, patientID))); err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = 0
	a.PatientID = patientID
	if err := h.svc.CreateAppointment(c.Request().Context(), &a); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

// GetAppointment admits patients by role, then narrows to the owner once the
// appointment is loaded.
func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, auth.Roles(auth.RoleAdmin, auth.RoleDoctor, auth.RolePatient)); err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := auth.Check(c, auth.AnyOf(auth.Roles(auth.RoleAdmin, auth.RoleDoctor), auth.Self(auth.RolePatient, a.PatientID))); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) ListToday(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListToday(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, auth.AnyOf(auth.Roles(auth.RoleAdmin, auth.RoleDoctor), auth.Self(auth.RolePatient, id))); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, auth.AnyOf(auth.Roles(auth.RoleAdmin), auth.Self(auth.RoleDoctor, id))); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdateAppointment(c.Request().Context(), id, &a); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "appointment deleted"})
}
