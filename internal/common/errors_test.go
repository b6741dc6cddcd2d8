package common

import (
	"errors"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	e := NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)

	msg := e.Error()
	if !strings.Contains(msg, "CONFIG_ERROR") || !strings.Contains(msg, "DB_URL is required") {
		t.Errorf("message = %q; want code and message present", msg)
	}
	if !errors.Is(e, ErrInvalidInput) {
		t.Errorf("AppError should unwrap to its cause")
	}
}

func TestAppErrorWithoutCause(t *testing.T) {
	e := NewAppError("CONFIG_ERROR", "something", nil)
	if e.Unwrap() != nil {
		t.Errorf("Unwrap() = %v; want nil", e.Unwrap())
	}
	if strings.Contains(e.Error(), "<nil>") {
		t.Errorf("message should not render a nil cause: %q", e.Error())
	}
}
