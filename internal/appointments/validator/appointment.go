package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	usersvalidator "medbook/internal/users/validator"
	"medbook/pkg/logger"
	"medbook/pkg/model"
)

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	if err := v.RegisterValidation("clocktime", usersvalidator.ValidateClockTime); err != nil {
		log.Fatal("Failed to register 'clocktime' validator", "error", err)
	}

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func (v *AppointmentValidator) Validate(appointment *model.Appointment) error {
	if err := v.validate.Struct(appointment); err != nil {
		return translate(err)
	}
	return nil
}

func (v *AppointmentValidator) ValidateUpdate(update *model.AppointmentUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return usersvalidator.TranslateValidationErrors(validationErrs)
	}
	return err
}
