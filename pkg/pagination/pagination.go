package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	MaxLimit = 500

	// TotalHeader reports the unpaged row count on list responses.
	TotalHeader = "X-Total-Count"
)

// Params holds pagination parameters extracted from a request. A zero Limit
// means the whole result set is returned.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts the optional limit and offset query parameters.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// SQL returns the LIMIT/OFFSET clause, or an empty string when unpaged.
func (p Params) SQL() string {
	switch {
	case p.Limit > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", p.Limit, p.Offset)
	case p.Offset > 0:
		return fmt.Sprintf(" OFFSET %d", p.Offset)
	}
	return ""
}

// Write sets the total header and writes items as a JSON array. A nil slice
// is written as [].
func Write[T any](c echo.Context, items []T, total int) error {
	if items == nil {
		items = []T{}
	}
	c.Response().Header().Set(TotalHeader, strconv.Itoa(total))
	return c.JSON(http.StatusOK, items)
}
