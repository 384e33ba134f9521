package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"medbook/pkg/logger"
	"medbook/pkg/model"
)

// clockRegex accepts 24-hour HH:mm wall-clock strings.
var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type UserValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	v := validator.New()

	if err := v.RegisterValidation("clocktime", ValidateClockTime); err != nil {
		log.Fatal("Failed to register 'clocktime' validator", "error", err)
	}

	return &UserValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateClockTime is shared by every validator that carries HH:mm fields.
func ValidateClockTime(fl validator.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

func (v *UserValidator) Validate(user *model.User) error {
	if err := v.validate.Struct(user); err != nil {
		return translate(err)
	}
	return nil
}

func (v *UserValidator) ValidateUpdate(update *model.UserUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return translate(err)
	}
	return nil
}

func (v *UserValidator) ValidateAvailability(slots []model.AvailabilitySlot) error {
	for i, slot := range slots {
		if err := v.validate.Struct(slot); err != nil {
			return translate(err)
		}
		if slot.EndTime <= slot.StartTime {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("availability_slots[%d].end_time", i),
					Message: "end_time must be after start_time",
				},
			}
		}
	}
	return nil
}

func translate(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return TranslateValidationErrors(validationErrs)
	}
	return err
}

// TranslateValidationErrors maps validator tags to client-facing messages.
func TranslateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "clocktime":
			message = fmt.Sprintf("%s must be in 24-hour HH:mm format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
