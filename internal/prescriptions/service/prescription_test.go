package service

import (
	"context"
	"testing"
	"time"

	appterrors "medbook/internal/appointments/errors"
	apptrepository "medbook/internal/appointments/repository"
	rxerrors "medbook/internal/prescriptions/errors"
	"medbook/internal/prescriptions/validator"
	userserrors "medbook/internal/users/errors"
	"medbook/pkg/config"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/logger"
	"medbook/pkg/model"
)

const (
	testPatientID = "64b0c8a9e4b0f1a2b3c4d5e6"
	testDoctorID  = "64b0c8a9e4b0f1a2b3c4d5e7"
	testApptID    = "64b0c8a9e4b0f1a2b3c4d5e9"
	testRxID      = "64b0c8a9e4b0f1a2b3c4d5f0"
)

// Mock repositories for testing
type mockPrescriptionRepository struct {
	createFunc        func(ctx context.Context, prescription *model.Prescription) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Prescription, error)
	findByPatientFunc func(ctx context.Context, patientID string) ([]*model.Prescription, error)
	findByDoctorFunc  func(ctx context.Context, doctorID string) ([]*model.Prescription, error)
}

func (m *mockPrescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, prescription)
	}
	prescription.ID = testRxID
	return nil
}
func (m *mockPrescriptionRepository) FindByID(ctx context.Context, id string) (*model.Prescription, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, rxerrors.ErrNotFound
}
func (m *mockPrescriptionRepository) FindByPatient(ctx context.Context, patientID string) ([]*model.Prescription, error) {
	if m.findByPatientFunc != nil {
		return m.findByPatientFunc(ctx, patientID)
	}
	return []*model.Prescription{}, nil
}
func (m *mockPrescriptionRepository) FindByDoctor(ctx context.Context, doctorID string) ([]*model.Prescription, error) {
	if m.findByDoctorFunc != nil {
		return m.findByDoctorFunc(ctx, doctorID)
	}
	return []*model.Prescription{}, nil
}
func (m *mockPrescriptionRepository) FindByAppointment(context.Context, string) ([]*model.Prescription, error) {
	return []*model.Prescription{}, nil
}

type mockAppointmentRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Appointment, error)
}

func (m *mockAppointmentRepository) Create(context.Context, *model.Appointment) error { return nil }
func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, appterrors.ErrNotFound
}
func (m *mockAppointmentRepository) SlotOccupied(context.Context, string, time.Time, string) (bool, error) {
	return false, nil
}
func (m *mockAppointmentRepository) Find(context.Context, apptrepository.ListFilter, int, int64) ([]*model.Appointment, error) {
	return nil, nil
}
func (m *mockAppointmentRepository) Count(context.Context, apptrepository.ListFilter) (int64, error) {
	return 0, nil
}
func (m *mockAppointmentRepository) Update(context.Context, string, *model.Appointment) error {
	return nil
}

type mockUserRepository struct{}

func (m *mockUserRepository) Create(context.Context, *model.User) error { return nil }
func (m *mockUserRepository) FindByID(context.Context, string) (*model.User, error) {
	return nil, userserrors.ErrNotFound
}
func (m *mockUserRepository) FindByEmail(context.Context, string) (*model.User, error) {
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
func (m *mockUserRepository) FindSummaries(_ context.Context, ids []string) (map[string]model.UserSummary, error) {
	summaries := make(map[string]model.UserSummary, len(ids))
	for _, id := range ids {
		summaries[id] = model.UserSummary{ID: id}
	}
	return summaries, nil
}

type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(_ context.Context, eventType, _ string, _ any) {
	m.published = append(m.published, eventType)
}

func newTestService(rx *mockPrescriptionRepository, appts *mockAppointmentRepository, publisher *mockPublisher) PrescriptionService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.FormatJSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewPrescriptionService(
		rx,
		appts,
		&mockUserRepository{},
		validator.NewPrescriptionValidator(cfg.Log),
		publisher,
		cfg,
	)
}

func ownedAppointment() *model.Appointment {
	return &model.Appointment{
		ID:        testApptID,
		PatientID: testPatientID,
		DoctorID:  testDoctorID,
		Status:    model.StatusCompleted,
	}
}

func validIssue() *IssueRequest {
	return &IssueRequest{
		AppointmentID: testApptID,
		Medications: []model.Medication{
			{Name: "Amoxicillin", Dose: "500mg", Frequency: "3x daily", Duration: "7 days"},
		},
	}
}

func TestIssue_NonDoctorForbidden(t *testing.T) {
	svc := newTestService(&mockPrescriptionRepository{}, &mockAppointmentRepository{}, &mockPublisher{})

	for _, role := range []model.Role{model.RolePatient, model.RoleAdmin} {
		requester := model.Requester{ID: testPatientID, Role: role}
		_, err := svc.Issue(context.Background(), requester, validIssue())

		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeForbidden {
			t.Errorf("role %s: expected FORBIDDEN, got %s", role, appErr.Code)
		}
	}
}

func TestIssue_OtherDoctorsAppointmentForbidden(t *testing.T) {
	appts := &mockAppointmentRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Appointment, error) {
			return ownedAppointment(), nil
		},
	}
	svc := newTestService(&mockPrescriptionRepository{}, appts, &mockPublisher{})

	otherDoctor := model.Requester{ID: "64b0c8a9e4b0f1a2b3c4d501", Role: model.RoleDoctor}
	_, err := svc.Issue(context.Background(), otherDoctor, validIssue())

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected FORBIDDEN, got %s", appErr.Code)
	}
}

func TestIssue_NoMedications(t *testing.T) {
	svc := newTestService(&mockPrescriptionRepository{}, &mockAppointmentRepository{}, &mockPublisher{})
	requester := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}

	req := validIssue()
	req.Medications = nil
	_, err := svc.Issue(context.Background(), requester, req)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
}

func TestIssue_AppointmentNotFound(t *testing.T) {
	svc := newTestService(&mockPrescriptionRepository{}, &mockAppointmentRepository{}, &mockPublisher{})
	requester := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}

	_, err := svc.Issue(context.Background(), requester, validIssue())

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}
}

func TestIssue_Success(t *testing.T) {
	appts := &mockAppointmentRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Appointment, error) {
			return ownedAppointment(), nil
		},
	}
	var saved *model.Prescription
	rx := &mockPrescriptionRepository{
		createFunc: func(_ context.Context, prescription *model.Prescription) error {
			saved = prescription
			prescription.ID = testRxID
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(rx, appts, publisher)

	requester := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}
	view, err := svc.Issue(context.Background(), requester, validIssue())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.PatientID != testPatientID {
		t.Errorf("patient_id must come from the appointment, got %s", saved.PatientID)
	}
	if saved.DoctorID != testDoctorID {
		t.Errorf("doctor_id must come from the requester, got %s", saved.DoctorID)
	}
	if view.ID != testRxID {
		t.Errorf("expected id %s, got %s", testRxID, view.ID)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "prescription.issued" {
		t.Errorf("expected prescription.issued event, got %v", publisher.published)
	}
}

func TestListMine_PatientAndDoctorScoping(t *testing.T) {
	var patientQueried, doctorQueried string
	rx := &mockPrescriptionRepository{
		findByPatientFunc: func(_ context.Context, patientID string) ([]*model.Prescription, error) {
			patientQueried = patientID
			return []*model.Prescription{}, nil
		},
		findByDoctorFunc: func(_ context.Context, doctorID string) ([]*model.Prescription, error) {
			doctorQueried = doctorID
			return []*model.Prescription{}, nil
		},
	}
	svc := newTestService(rx, &mockAppointmentRepository{}, &mockPublisher{})

	if _, err := svc.ListMine(context.Background(), model.Requester{ID: testPatientID, Role: model.RolePatient}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ListMine(context.Background(), model.Requester{ID: testDoctorID, Role: model.RoleDoctor}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if patientQueried != testPatientID {
		t.Errorf("expected patient listing scoped to %s, got %q", testPatientID, patientQueried)
	}
	if doctorQueried != testDoctorID {
		t.Errorf("expected doctor listing scoped to %s, got %q", testDoctorID, doctorQueried)
	}
}

func TestGet_StrangerForbidden(t *testing.T) {
	rx := &mockPrescriptionRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Prescription, error) {
			return &model.Prescription{
				ID:            testRxID,
				AppointmentID: testApptID,
				DoctorID:      testDoctorID,
				PatientID:     testPatientID,
			}, nil
		},
	}
	svc := newTestService(rx, &mockAppointmentRepository{}, &mockPublisher{})

	stranger := model.Requester{ID: "64b0c8a9e4b0f1a2b3c4d500", Role: model.RolePatient}
	_, err := svc.Get(context.Background(), stranger, testRxID)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected FORBIDDEN, got %s", appErr.Code)
	}
}

func TestListByAppointment_PatientOfRecordAllowed(t *testing.T) {
	appts := &mockAppointmentRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Appointment, error) {
			return ownedAppointment(), nil
		},
	}
	svc := newTestService(&mockPrescriptionRepository{}, appts, &mockPublisher{})

	patient := model.Requester{ID: testPatientID, Role: model.RolePatient}
	views, err := svc.ListByAppointment(context.Background(), patient, testApptID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if views == nil {
		t.Error("expected empty slice, not nil")
	}
}
