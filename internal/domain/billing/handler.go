package billing

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
	admin := auth.RequireRole(auth.RoleAdmin)

	g.GET("/bills", h.ListBills, auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	g.POST("/bills", h.CreateBill, admin)
	g.GET("/bills/patient/:id", h.ListByPatient)
	g.GET("/bills/:id", h.GetBill)
	g.PUT("/bills/:id", h.UpdateBill, admin)
	g.DELETE("/bills/:id", h.DeleteBill, admin)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateBill(c echo.Context) error {
	var b Bill
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b.ID = 0
	if err := h.svc.CreateBill(c.Request().Context(), &b); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GetBill is open to ADMIN and to the PATIENT the bill belongs to.
func (h *Handler) GetBill(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, auth.Roles(auth.RoleAdmin, auth.RolePatient)); err != nil {
		return err
	}
	b, err := h.svc.GetBill(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := auth.Check(c, auth.AnyOf(auth.Roles(auth.RoleAdmin), auth.Self(auth.RolePatient, b.PatientID))); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// ListBills returns every bill, or only those in ?status= when given.
func (h *Handler) ListBills(c echo.Context) error {
	pg := pagination.FromContext(c)
	var (
		items []*Bill
		total int
		err   error
	)
	if status := c.QueryParam("status"); status != "" {
		items, total, err = h.svc.ListByStatus(c.Request().Context(), status, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.ListBills(c.Request().Context(), pg.Limit, pg.Offset)
	}
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
	if err := auth.Check(c, auth.AnyOf(auth.Roles(auth.RoleAdmin), auth.Self(auth.RolePatient, id))); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) UpdateBill(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var b Bill
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdateBill(c.Request().Context(), id, &b); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBill(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBill(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "bill not found").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "bill deleted"})
}
