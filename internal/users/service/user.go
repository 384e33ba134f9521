package service

import (
	"context"
	"errors"

	userserrors "medbook/internal/users/errors"
	"medbook/internal/users/repository"
	"medbook/internal/users/validator"
	"medbook/pkg/config"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/model"
	"medbook/pkg/sanitizer"
)

type UserService interface {
	Me(ctx context.Context, requester model.Requester) (*model.User, error)
	UpdateMe(ctx context.Context, requester model.Requester, updates *model.UserUpdate) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	ListDoctors(ctx context.Context, specialization string) ([]*model.User, error)
	ListPatients(ctx context.Context, requester model.Requester) ([]*model.User, error)
	SetAvailability(ctx context.Context, requester model.Requester, doctorID string, slots []model.AvailabilitySlot) (*model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, validator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Me(ctx context.Context, requester model.Requester) (*model.User, error) {
	return s.Get(ctx, requester.ID)
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return user, nil
}

func (s *userService) UpdateMe(ctx context.Context, requester model.Requester, updates *model.UserUpdate) (*model.User, error) {
	existing, err := s.repo.FindByID(ctx, requester.ID)
	if err != nil {
		return nil, s.mapLookupError(err, requester.ID)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Profile update validation failed", "id", requester.ID, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUserUpdates(existing, updates)
	if err := s.repo.Update(ctx, requester.ID, merged); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", requester.ID)
		}
		return nil, apperrors.Internal("Failed to update profile", err)
	}

	s.cfg.Log.Info("Profile updated", "id", requester.ID)
	return merged, nil
}

func (s *userService) ListDoctors(ctx context.Context, specialization string) ([]*model.User, error) {
	doctors, err := s.repo.FindDoctors(ctx, sanitizer.SanitizeName(specialization))
	if err != nil {
		s.cfg.Log.Error("Failed to list doctors", "error", err)
		return nil, apperrors.Internal("Failed to retrieve doctors", err)
	}
	return doctors, nil
}

func (s *userService) ListPatients(ctx context.Context, requester model.Requester) ([]*model.User, error) {
	if requester.Role != model.RoleDoctor && requester.Role != model.RoleAdmin {
		return nil, apperrors.Forbidden("Only doctors and admins may list patients")
	}

	patients, err := s.repo.FindPatients(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list patients", "error", err)
		return nil, apperrors.Internal("Failed to retrieve patients", err)
	}
	return patients, nil
}

func (s *userService) SetAvailability(ctx context.Context, requester model.Requester, doctorID string, slots []model.AvailabilitySlot) (*model.User, error) {
	if requester.Role == model.RoleDoctor && requester.ID != doctorID {
		return nil, apperrors.Forbidden("Doctors may only edit their own availability")
	}
	if requester.Role == model.RolePatient {
		return nil, apperrors.Forbidden("Patients may not edit availability")
	}

	if err := s.validator.ValidateAvailability(slots); err != nil {
		return nil, apperrors.Validation("Invalid availability slots", map[string]any{"error": err.Error()})
	}

	doctor, err := s.repo.FindDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Doctor", doctorID)
		}
		return nil, s.mapLookupError(err, doctorID)
	}

	doctor.Availability = slots
	if err := s.repo.Update(ctx, doctorID, doctor); err != nil {
		return nil, apperrors.Internal("Failed to update availability", err)
	}

	s.cfg.Log.Info("Doctor availability updated", "doctor_id", doctorID, "slots", len(slots))
	return doctor, nil
}

func (s *userService) mergeUserUpdates(existing *model.User, updates *model.UserUpdate) *model.User {
	merged := *existing

	if updates.Name != "" {
		merged.Name = sanitizer.SanitizeName(updates.Name)
	}
	if updates.Phone != nil {
		merged.Phone = sanitizer.SanitizeName(*updates.Phone)
	}
	if updates.DOB != nil {
		merged.DOB = updates.DOB
	}
	if updates.Gender != "" {
		merged.Gender = updates.Gender
	}
	if updates.Address != nil {
		merged.Address = sanitizer.SanitizeFreeText(*updates.Address)
	}
	if updates.MedicalHistory != nil {
		merged.MedicalHistory = sanitizer.SanitizeFreeText(*updates.MedicalHistory)
	}

	return &merged
}

func (s *userService) mapLookupError(err error, id string) error {
	if errors.Is(err, userserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("User", id)
	}
	if errors.Is(err, userserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	return apperrors.Internal("Failed to retrieve user", err)
}
