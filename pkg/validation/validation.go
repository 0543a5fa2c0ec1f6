// Package validation wires go-playground/validator with the lodging custom
// tags and turns its errors into field-level messages for API responses.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"lodging/pkg/logger"
	"lodging/pkg/model"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors for an AppError payload.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

// New returns a validator with the accommodation_type, accommodation_location
// and stay_date tags registered. Fields are reported by their JSON names.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"accommodation_type":     oneOfFunc(model.AccommodationTypes),
		"accommodation_location": oneOfFunc(model.AccommodationLocations),
		"stay_date":              validateStayDate,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return v
}

func oneOfFunc(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

func validateStayDate(fl validator.FieldLevel) bool {
	_, err := time.ParseInLocation(dateLayout, fl.Field().String(), time.UTC)
	return err == nil
}

// Struct validates s and translates failures into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required", "required_if":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "accommodation_type":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(model.AccommodationTypes, ", "))
		case "accommodation_location":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(model.AccommodationLocations, ", "))
		case "stay_date":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		}

		out = append(out, ValidationError{
			Field:   fieldPath(err),
			Message: message,
		})
	}

	return out
}

// fieldPath drops the top-level struct name from the namespace so nested
// map keys read as available_rooms_by_date[2024-07-01].
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}
