package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
)

// RequestValidator plugs validator/v10 into echo.Context.Validate. Failures
// come back as validation errors naming the first offending field.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator reports fields by their json names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			return apperr.Validation(field + " is required")
		case "email":
			return apperr.Validation(field + " must be a valid email")
		case "min", "gte":
			return apperr.Validation(fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			return apperr.Validation(field + " is invalid")
		}
	}
	return apperr.Validation(err.Error())
}
