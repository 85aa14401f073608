package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHTTP_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", NotFound("patient"), http.StatusNotFound, "patient not found"},
		{"wrapped not found", fmt.Errorf("get bill: %w", ErrNotFound), http.StatusNotFound, "get bill: not found"},
		{"conflict", Conflict("email %s already registered", "a@b.c"), http.StatusConflict, "email a@b.c already registered"},
		{"validation", Invalid("name is required"), http.StatusBadRequest, "name is required"},
		{"unauthorized", &Error{Kind: ErrUnauthorized, Msg: "invalid email or password"}, http.StatusUnauthorized, "invalid email or password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := HTTP(tt.err)
			if he.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, he.Code)
			}
			if he.Message != tt.msg {
				t.Errorf("expected message %q, got %v", tt.msg, he.Message)
			}
		})
	}
}

func TestHTTP_UnknownErrorHidesCause(t *testing.T) {
	cause := errors.New("connection reset by peer")
	he := HTTP(cause)
	if he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", he.Code)
	}
	if he.Message != "internal server error" {
		t.Errorf("unexpected message: %v", he.Message)
	}
	if !errors.Is(he.Internal, cause) {
		t.Error("expected internal cause to be preserved")
	}
}

func TestHTTP_PassesThroughEchoErrors(t *testing.T) {
	orig := echo.NewHTTPError(http.StatusTeapot, "short and stout")
	if got := HTTP(orig); got != orig {
		t.Errorf("expected the same *echo.HTTPError back")
	}
}

func TestHTTP_Nil(t *testing.T) {
	if HTTP(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestError_Is(t *testing.T) {
	if !errors.Is(Invalid("x"), ErrValidation) {
		t.Error("Invalid should match ErrValidation")
	}
	if errors.Is(Invalid("x"), ErrNotFound) {
		t.Error("Invalid should not match ErrNotFound")
	}
}
