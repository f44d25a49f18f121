// Package validation wires go-playground/validator into echo with the
// custom tags used by request models.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/phone"
	"github.com/jordanlanch/printfast/pkg/schedule"
)

// Validator implements echo.Validator
type Validator struct {
	validate *validator.Validate
}

// New builds a validator with the custom tags registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("paymentday", func(fl validator.FieldLevel) bool {
		_, ok := models.NormalizePaymentDay(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return auth.IsStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phone.IsValid(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Message turns validator errors into a single readable sentence.
// Other errors are returned as their Error() text.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, lowerFirst(fe.Param()))
	case "paymentday":
		return fmt.Sprintf("%s must be a day of the week", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field)
	case "strongpassword":
		return fmt.Sprintf("%s must be at least 8 characters and contain upper and lower case letters, a number and a special character", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
