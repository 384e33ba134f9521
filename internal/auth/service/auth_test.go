package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	userserrors "medbook/internal/users/errors"
	"medbook/internal/users/validator"
	"medbook/pkg/config"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/logger"
	"medbook/pkg/model"
	"medbook/pkg/token"
)

// Mock repository for testing
type mockUserRepository struct {
	createFunc      func(ctx context.Context, user *model.User) error
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "64b0c8a9e4b0f1a2b3c4d5e6"
	return nil
}
func (m *mockUserRepository) FindByID(context.Context, string) (*model.User, error) {
	return nil, userserrors.ErrNotFound
}
func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, userserrors.ErrNotFound
}
func (m *mockUserRepository) FindDoctorByID(context.Context, string) (*model.User, error) {
	return nil, userserrors.ErrNotFound
}
func (m *mockUserRepository) FindDoctors(context.Context, string) ([]*model.User, error) {
	return nil, nil
}
func (m *mockUserRepository) FindPatients(context.Context) ([]*model.User, error) { return nil, nil }
func (m *mockUserRepository) Update(context.Context, string, *model.User) error   { return nil }
func (m *mockUserRepository) FindSummaries(context.Context, []string) (map[string]model.UserSummary, error) {
	return map[string]model.UserSummary{}, nil
}

func newTestService(repo *mockUserRepository) (AuthService, *token.Manager) {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.FormatJSON,
			Service: "test",
		}),
		BcryptCost:   bcrypt.MinCost,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	tokens := token.NewManager("test-secret", time.Hour)
	return NewAuthService(repo, validator.NewUserValidator(cfg.Log), tokens, cfg), tokens
}

func validSignup() *SignupRequest {
	return &SignupRequest{
		Name:     "Jordan Reyes",
		Email:    "jordan@example.com",
		Password: "correct horse battery",
	}
}

func TestSignup_DefaultsToPatient(t *testing.T) {
	svc, tokens := newTestService(&mockUserRepository{})

	result, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.Role != model.RolePatient {
		t.Errorf("expected default role patient, got %s", result.User.Role)
	}

	claims, err := tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if claims.UserID != result.User.ID || claims.Role != model.RolePatient {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

func TestSignup_HashesPassword(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepository{
		createFunc: func(_ context.Context, user *model.User) error {
			saved = user
			user.ID = "64b0c8a9e4b0f1a2b3c4d5e6"
			return nil
		},
	}
	svc, _ := newTestService(repo)

	req := validSignup()
	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.PasswordHash == req.Password {
		t.Fatal("password must not be stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte(req.Password)); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{
		createFunc: func(_ context.Context, _ *model.User) error {
			return userserrors.ErrDuplicateEmail
		},
	}
	svc, _ := newTestService(repo)

	_, err := svc.Signup(context.Background(), validSignup())

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %s", appErr.Code)
	}
}

func TestSignup_ShortPassword(t *testing.T) {
	svc, _ := newTestService(&mockUserRepository{})

	req := validSignup()
	req.Password = "short"
	_, err := svc.Signup(context.Background(), req)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %s", appErr.Code)
	}
}

func TestSignup_RejectsBogusRole(t *testing.T) {
	svc, _ := newTestService(&mockUserRepository{})

	req := validSignup()
	req.Role = "superuser"
	_, err := svc.Signup(context.Background(), req)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
}

func TestLogin_SameErrorForUnknownEmailAndBadPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	repo := &mockUserRepository{
		findByEmailFunc: func(_ context.Context, email string) (*model.User, error) {
			if email == "known@example.com" {
				return &model.User{
					ID:           "64b0c8a9e4b0f1a2b3c4d5e6",
					Role:         model.RolePatient,
					Email:        email,
					PasswordHash: string(hash),
				}, nil
			}
			return nil, userserrors.ErrNotFound
		},
	}
	svc, _ := newTestService(repo)

	_, errUnknown := svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	_, errBadPass := svc.Login(context.Background(), &LoginRequest{Email: "known@example.com", Password: "wrong password"})

	unknownErr := apperrors.AsAppError(errUnknown)
	badPassErr := apperrors.AsAppError(errBadPass)

	if unknownErr.Code != apperrors.CodeUnauthorized || badPassErr.Code != apperrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for both, got %s and %s", unknownErr.Code, badPassErr.Code)
	}
	if unknownErr.Message != badPassErr.Message {
		t.Errorf("messages must not reveal which emails exist: %q vs %q", unknownErr.Message, badPassErr.Message)
	}
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	repo := &mockUserRepository{
		findByEmailFunc: func(_ context.Context, _ string) (*model.User, error) {
			return &model.User{
				ID:           "64b0c8a9e4b0f1a2b3c4d5e7",
				Role:         model.RoleDoctor,
				Email:        "doc@example.com",
				PasswordHash: string(hash),
			}, nil
		},
	}
	svc, tokens := newTestService(repo)

	result, err := svc.Login(context.Background(), &LoginRequest{Email: "doc@example.com", Password: "right password"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if claims.Role != model.RoleDoctor {
		t.Errorf("expected doctor claims, got %s", claims.Role)
	}
}
