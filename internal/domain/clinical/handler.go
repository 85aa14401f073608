package clinical

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

	g.GET("/medical-records", h.ListRecords, staff)
	g.POST("/medical-records", h.CreateRecord, staff)
	g.GET("/medical-records/patient/:id", h.ListByPatient)
	g.GET("/medical-records/doctor/:id", h.ListByDoctor)
	g.GET("/medical-records/:id", h.GetRecord, staff)
	g.PUT("/medical-records/:id", h.UpdateRecord, staff)
	g.DELETE("/medical-records/:id", h.DeleteRecord, staff)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var m MedicalRecord
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m.ID = 0
	if err := h.svc.CreateRecord(c.Request().Context(), &m); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRecords(c.Request().Context(), pg.Limit, pg.Offset)
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

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var m MedicalRecord
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdateRecord(c.Request().Context(), id, &m); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medical record not found").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "medical record deleted"})
}
