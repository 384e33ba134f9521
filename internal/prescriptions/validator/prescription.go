package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	usersvalidator "medbook/internal/users/validator"
	"medbook/pkg/logger"
	"medbook/pkg/model"
)

type PrescriptionValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPrescriptionValidator(log *logger.Logger) *PrescriptionValidator {
	return &PrescriptionValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *PrescriptionValidator) Validate(prescription *model.Prescription) error {
	if err := v.validate.Struct(prescription); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return usersvalidator.TranslateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}
