package validator

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	// "priority" accepts the task priorities the extractor and UI use, "No Priority" included
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		_, ok := entities.ParsePriority(fl.Field().String())
		return ok
	})
	return &CustomValidator{v: v}
}

// Validate performs struct validation and reports failures as a ValidationError
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stdErrors.As(err, &fieldErrs) {
		return errors.ErrValidation(err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	appErr := errors.ErrValidation("")
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
		messages = append(messages, msg)
		appErr = appErr.WithDetail(fe.Field(), fe.Tag())
	}
	appErr.Message = strings.Join(messages, "; ")
	return appErr
}
