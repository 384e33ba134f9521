package validator

import (
	"testing"

	"medbook/pkg/logger"
	"medbook/pkg/model"
)

func newTestValidator() *UserValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "test",
	})
	return NewUserValidator(log)
}

func TestClockTimeFormat(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"midnight", "00:00", true},
		{"morning", "09:30", true},
		{"late evening", "23:58", true},
		{"hour out of range", "24:00", false},
		{"minute out of range", "12:60", false},
		{"single digit hour", "9:30", false},
		{"with seconds", "09:30:00", false},
		{"empty", "", false},
		{"garbage", "morning", false},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := []model.AvailabilitySlot{
				{DayOfWeek: 1, StartTime: tt.value, EndTime: "23:59"},
			}
			err := v.ValidateAvailability(slots)
			if tt.valid && err != nil {
				t.Errorf("expected %q to be valid: %v", tt.value, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %q to be rejected", tt.value)
			}
		})
	}
}

func TestValidateAvailability_WindowMustMoveForward(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateAvailability([]model.AvailabilitySlot{
		{DayOfWeek: 2, StartTime: "10:00", EndTime: "10:00"},
	})
	if err == nil {
		t.Error("expected zero-length window to be rejected")
	}
}

func TestValidate_RejectsUnknownRole(t *testing.T) {
	v := newTestValidator()

	user := &model.User{
		Role:         "superuser",
		Name:         "Jordan Reyes",
		Email:        "jordan@example.com",
		PasswordHash: "x",
	}
	if err := v.Validate(user); err == nil {
		t.Error("expected unknown role to be rejected")
	}
}

func TestValidate_TranslatesFieldMessages(t *testing.T) {
	v := newTestValidator()

	user := &model.User{
		Role:         model.RolePatient,
		Name:         "J",
		Email:        "not-an-email",
		PasswordHash: "x",
	}
	err := v.Validate(user)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 2 {
		t.Errorf("expected 2 field errors, got %d: %v", len(verrs), verrs)
	}
}
