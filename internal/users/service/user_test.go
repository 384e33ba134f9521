package service

import (
	"context"
	"testing"
	"time"

	userserrors "medbook/internal/users/errors"
	"medbook/internal/users/validator"
	"medbook/pkg/config"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/logger"
	"medbook/pkg/model"
)

const (
	testPatientID = "64b0c8a9e4b0f1a2b3c4d5e6"
	testDoctorID  = "64b0c8a9e4b0f1a2b3c4d5e7"
	testAdminID   = "64b0c8a9e4b0f1a2b3c4d5e8"
)

// Mock repository for testing
type mockUserRepository struct {
	findByIDFunc       func(ctx context.Context, id string) (*model.User, error)
	findDoctorByIDFunc func(ctx context.Context, id string) (*model.User, error)
	findPatientsFunc   func(ctx context.Context) ([]*model.User, error)
	updateFunc         func(ctx context.Context, id string, user *model.User) error
}

func (m *mockUserRepository) Create(context.Context, *model.User) error { return nil }
func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}
func (m *mockUserRepository) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, userserrors.ErrNotFound
}
func (m *mockUserRepository) FindDoctorByID(ctx context.Context, id string) (*model.User, error) {
	if m.findDoctorByIDFunc != nil {
		return m.findDoctorByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}
func (m *mockUserRepository) FindDoctors(context.Context, string) ([]*model.User, error) {
	return []*model.User{}, nil
}
func (m *mockUserRepository) FindPatients(ctx context.Context) ([]*model.User, error) {
	if m.findPatientsFunc != nil {
		return m.findPatientsFunc(ctx)
	}
	return []*model.User{}, nil
}
func (m *mockUserRepository) Update(ctx context.Context, id string, user *model.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, user)
	}
	return nil
}
func (m *mockUserRepository) FindSummaries(context.Context, []string) (map[string]model.UserSummary, error) {
	return map[string]model.UserSummary{}, nil
}

func newTestService(repo *mockUserRepository) UserService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.FormatJSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewUserService(repo, validator.NewUserValidator(cfg.Log), cfg)
}

func storedPatient() *model.User {
	return &model.User{
		ID:           testPatientID,
		Role:         model.RolePatient,
		Name:         "Jordan Reyes",
		Email:        "jordan@example.com",
		PasswordHash: "x",
		Phone:        "555-0100",
	}
}

func TestListPatients_PatientForbidden(t *testing.T) {
	svc := newTestService(&mockUserRepository{})
	requester := model.Requester{ID: testPatientID, Role: model.RolePatient}

	_, err := svc.ListPatients(context.Background(), requester)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected FORBIDDEN, got %s", appErr.Code)
	}
}

func TestListPatients_DoctorAllowed(t *testing.T) {
	repo := &mockUserRepository{
		findPatientsFunc: func(_ context.Context) ([]*model.User, error) {
			return []*model.User{storedPatient()}, nil
		},
	}
	svc := newTestService(repo)
	requester := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}

	patients, err := svc.ListPatients(context.Background(), requester)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 1 {
		t.Errorf("expected 1 patient, got %d", len(patients))
	}
}

func TestUpdateMe_MergesOnlyProvidedFields(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.User, error) {
			return storedPatient(), nil
		},
		updateFunc: func(_ context.Context, _ string, user *model.User) error {
			saved = user
			return nil
		},
	}
	svc := newTestService(repo)
	requester := model.Requester{ID: testPatientID, Role: model.RolePatient}

	address := "12 Main St"
	updated, err := svc.UpdateMe(context.Background(), requester, &model.UserUpdate{
		Name:    "Jordan R. Reyes",
		Address: &address,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.Name != "Jordan R. Reyes" {
		t.Errorf("expected updated name, got %q", saved.Name)
	}
	if saved.Phone != "555-0100" {
		t.Errorf("untouched fields must survive the merge, got phone %q", saved.Phone)
	}
	if updated.Address != address {
		t.Errorf("expected address %q, got %q", address, updated.Address)
	}
}

func TestUpdateMe_ValidationError(t *testing.T) {
	repo := &mockUserRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.User, error) {
			return storedPatient(), nil
		},
	}
	svc := newTestService(repo)
	requester := model.Requester{ID: testPatientID, Role: model.RolePatient}

	_, err := svc.UpdateMe(context.Background(), requester, &model.UserUpdate{Gender: "unknown"})

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %s", appErr.Code)
	}
}

func TestSetAvailability_DoctorCannotEditOthers(t *testing.T) {
	svc := newTestService(&mockUserRepository{})
	requester := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}

	_, err := svc.SetAvailability(context.Background(), requester, "64b0c8a9e4b0f1a2b3c4d500", nil)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected FORBIDDEN, got %s", appErr.Code)
	}
}

func TestSetAvailability_RejectsInvertedWindow(t *testing.T) {
	svc := newTestService(&mockUserRepository{})
	requester := model.Requester{ID: testAdminID, Role: model.RoleAdmin}

	slots := []model.AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "14:00", EndTime: "09:00"},
	}
	_, err := svc.SetAvailability(context.Background(), requester, testDoctorID, slots)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %s", appErr.Code)
	}
}

func TestSetAvailability_AdminOnMissingDoctor(t *testing.T) {
	svc := newTestService(&mockUserRepository{})
	requester := model.Requester{ID: testAdminID, Role: model.RoleAdmin}

	slots := []model.AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "14:00"},
	}
	_, err := svc.SetAvailability(context.Background(), requester, testDoctorID, slots)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}
}
