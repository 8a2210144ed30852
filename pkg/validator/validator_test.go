package validator

import (
	stdErrors "errors"
	"testing"

	"github.com/johnquangdev/minutes360/errors"
)

type sampleRequest struct {
	ListID   string `validate:"required"`
	Priority string `validate:"omitempty,priority"`
}

func TestValidate(t *testing.T) {
	v := New()

	if err := v.Validate(&sampleRequest{ListID: "l1", Priority: "No Priority"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	err := v.Validate(&sampleRequest{Priority: "whenever"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !stdErrors.Is(err, errors.Kind(errors.ErrorCode_VALIDATION)) {
		t.Fatalf("expected VALIDATION code, got %v", err)
	}
	var appErr errors.AppError
	stdErrors.As(err, &appErr)
	if appErr.Details["ListID"] != "required" || appErr.Details["Priority"] != "priority" {
		t.Fatalf("unexpected details %v", appErr.Details)
	}
}
