package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	userserrors "medbook/internal/users/errors"
	"medbook/internal/users/repository"
	"medbook/internal/users/validator"
	"medbook/pkg/config"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/model"
	"medbook/pkg/sanitizer"
	"medbook/pkg/token"
)

type SignupRequest struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	Role           model.Role `json:"role,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	DOB            *time.Time `json:"dob,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	Specialization string     `json:"specialization,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult pairs the issued token with the sanitized user record.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
}

type authService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	tokens    *token.Manager
	cfg       *config.Config
}

func NewAuthService(repo repository.UserRepository, validator *validator.UserValidator, tokens *token.Manager, cfg *config.Config) AuthService {
	return &authService{
		repo:      repo,
		validator: validator,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*AuthResult, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperrors.InvalidInput("Name, email, and password are required")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.Validation("Password must be at least 8 characters", nil)
	}

	role := req.Role
	if role == "" {
		role = model.RolePatient
	}
	if !role.Valid() {
		return nil, apperrors.InvalidInput("Role must be one of: patient, doctor, admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Role:         role,
		Name:         sanitizer.SanitizeName(req.Name),
		Email:        sanitizer.SanitizeEmail(req.Email),
		PasswordHash: string(hash),
		Phone:        req.Phone,
		DOB:          req.DOB,
		Gender:       req.Gender,
	}
	if role == model.RoleDoctor {
		user.Specialization = sanitizer.SanitizeName(req.Specialization)
	}

	if err := s.validator.Validate(user); err != nil {
		s.cfg.Log.Warn("Signup validation failed", "error", err)
		return nil, apperrors.Validation("Signup validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email already registered")
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	signed, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User signed up", "id", user.ID, "role", user.Role)
	return &AuthResult{Token: signed, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.InvalidInput("Email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, sanitizer.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			// Same message as a bad password: do not reveal which emails exist.
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		s.cfg.Log.Error("Failed to look up user for login", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	signed, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User logged in", "id", user.ID, "role", user.Role)
	return &AuthResult{Token: signed, User: user}, nil
}
