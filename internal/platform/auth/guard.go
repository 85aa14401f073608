package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Decision is the outcome of evaluating a Guard.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...interface{}) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Guard is an access rule over the caller.
type Guard func(p Principal) Decision

// Roles allows callers holding any of the given roles.
func Roles(roles ...Role) Guard {
	return func(p Principal) Decision {
		for _, r := range roles {
			if p.Role == r {
				return allow()
			}
		}
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return deny("required role: %s", strings.Join(names, " or "))
	}
}

// Self allows a caller of the given role whose id equals ownerID.
func Self(role Role, ownerID int64) Guard {
	return func(p Principal) Decision {
		if p.Role == role && p.ID == ownerID {
			return allow()
		}
		return deny("%s may only access their own resources", role)
	}
}

// Authenticated allows any caller with a valid principal.
func Authenticated() Guard {
	return func(Principal) Decision { return allow() }
}

// AnyOf allows the caller when at least one guard does.
func AnyOf(guards ...Guard) Guard {
	return func(p Principal) Decision {
		reasons := make([]string, 0, len(guards))
		for _, g := range guards {
			d := g(p)
			if d.Allowed {
				return d
			}
			reasons = append(reasons, d.Reason)
		}
		return Decision{Reason: strings.Join(reasons, "; ")}
	}
}

// Check evaluates g against the caller on c. It returns 401 when there is no
// authenticated caller and 403 when g denies.
func Check(c echo.Context, g Guard) error {
	p, ok := PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if d := g(p); !d.Allowed {
		return echo.NewHTTPError(http.StatusForbidden, d.Reason)
	}
	return nil
}
