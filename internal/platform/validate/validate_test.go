package validate

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type sample struct {
	Term  string `validate:"required,max=5"`
	Field string `validate:"omitempty,alphanum"`
}

func TestValidate_OK(t *testing.T) {
	if err := New().Validate(&sample{Term: "abc", Field: "disease"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsFields(t *testing.T) {
	err := New().Validate(&sample{Term: "toolong", Field: "a-b"})
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", he.Code)
	}
	msg, _ := he.Message.(string)
	if !strings.Contains(msg, "Term (max)") || !strings.Contains(msg, "Field (alphanum)") {
		t.Errorf("unexpected message: %q", msg)
	}
}
