package report

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	mustRegister(v, "urgency", func(fl validator.FieldLevel) bool {
		return Urgency(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

type createInput struct {
	Category Category       `validate:"required,category"`
	Urgency  Urgency        `validate:"required,urgency"`
	Location *locationInput `validate:"omitempty"`
}

type locationInput struct {
	Lat      float64  `validate:"gte=-90,lte=90"`
	Lng      float64  `validate:"gte=-180,lte=180"`
	Accuracy *float64 `validate:"omitempty,gte=0"`
}

type updateInput struct {
	Status *Status `validate:"omitempty,status"`
}

// ValidateCreateInput validates a report creation request.
func ValidateCreateInput(req CreateRequest) error {
	in := createInput{Category: req.Category, Urgency: req.Urgency}
	if req.Location != nil {
		in.Location = &locationInput{
			Lat:      req.Location.Lat,
			Lng:      req.Location.Lng,
			Accuracy: req.Location.Accuracy,
		}
	}

	fields := make(map[string]string)
	collectFieldErrors(validate.Struct(in), fields)

	if strings.TrimSpace(req.Description) == "" && req.PhotoURL == nil && req.AudioURL == nil {
		fields["description"] = "description, photo or audio is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateUpdateInput validates a partial update request.
func ValidateUpdateInput(req UpdateRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return ErrInvalidInput
	}

	fields := make(map[string]string)
	collectFieldErrors(validate.Struct(updateInput{Status: req.Status}), fields)

	if req.Department != nil && strings.TrimSpace(*req.Department) == "" {
		fields["department"] = "must not be empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func collectFieldErrors(err error, fields map[string]string) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return
	}
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = fieldMessage(fe)
	}
}

// fieldPath turns "createInput.Location.Lat" into "location.lat".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = lowerFirst(p)
	}
	return strings.Join(parts, ".")
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missed value"
	case "status", "category", "urgency":
		return "unknown " + fe.Tag()
	case "gte", "lte":
		return "out of range"
	default:
		return "invalid value"
	}
}
