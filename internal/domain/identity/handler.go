package identity

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
	g.POST("/auth/login", h.Login)
	g.POST("/auth/register", h.Register)
	g.GET("/auth/me", h.Me)

	staff := auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor)
	admin := auth.RequireRole(auth.RoleAdmin)

	g.GET("/patients", h.ListPatients, staff)
	g.POST("/patients", h.CreatePatient, admin)
	g.GET("/patients/:id", h.GetPatient)
	g.PUT("/patients/:id", h.UpdatePatient)
	g.DELETE("/patients/:id", h.DeletePatient)

	g.GET("/doctors", h.ListDoctors, staff)
	g.POST("/doctors", h.CreateDoctor, admin)
	g.GET("/doctors/department/:department", h.ListDoctorsByDepartment)
	g.GET("/doctors/specialization/:specialization", h.ListDoctorsBySpecialization)
	g.GET("/doctors/:id", h.GetDoctor)
	g.PUT("/doctors/:id", h.UpdateDoctor)
	g.DELETE("/doctors/:id", h.DeleteDoctor)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// patientAccess: staff, or the patient themself.
func patientAccess(id int64) auth.Guard {
	return auth.AnyOf(auth.Roles(auth.RoleAdmin, auth.RoleDoctor), auth.Self(auth.RolePatient, id))
}

// patientWriteAccess: doctors may read a patient but not edit one.
func patientWriteAccess(id int64) auth.Guard {
	return auth.AnyOf(auth.Roles(auth.RoleAdmin), auth.Self(auth.RolePatient, id))
}

func doctorAccess(id int64) auth.Guard {
	return auth.AnyOf(auth.Roles(auth.RoleAdmin), auth.Self(auth.RoleDoctor, id))
}

// -- Authentication --

func (h *Handler) Login(c echo.Context) error {
	var cr Credentials
	if err := c.Bind(&cr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s, err := h.svc.Login(c.Request().Context(), cr)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Register(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s, err := h.svc.Register(c.Request().Context(), &p)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) Me(c echo.Context) error {
	if err := auth.Check(c, auth.Authenticated()); err != nil {
		return err
	}
	u, err := h.svc.Me(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return apperr.HTTP(err)
	}
	u.Redact()
	return c.JSON(http.StatusOK, u)
}

// -- Patient --

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return apperr.HTTP(err)
	}
	p.Redact()
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, patientAccess(id)); err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, patientWriteAccess(id)); err != nil {
		return err
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdatePatient(c.Request().Context(), id, &p); err != nil {
		return apperr.HTTP(err)
	}
	p.Redact()
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, auth.AnyOf(auth.Roles(auth.RoleAdmin), auth.Self(auth.RolePatient, id))); err != nil {
		return err
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "patient deleted"})
}

// -- Doctor --

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return apperr.HTTP(err)
	}
	d.Redact()
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, doctorAccess(id)); err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) ListDoctorsByDepartment(c echo.Context) error {
	if err := auth.Check(c, auth.Authenticated()); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctorsByDepartment(c.Request().Context(), c.Param("department"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) ListDoctorsBySpecialization(c echo.Context) error {
	if err := auth.Check(c, auth.Authenticated()); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctorsBySpecialization(c.Request().Context(), c.Param("specialization"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return pagination.Write(c, items, total)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, doctorAccess(id)); err != nil {
		return err
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdateDoctor(c.Request().Context(), id, &d); err != nil {
		return apperr.HTTP(err)
	}
	d.Redact()
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := auth.Check(c, doctorAccess(id)); err != nil {
		return err
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "doctor deleted"})
}
