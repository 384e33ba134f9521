package service

import (
	"context"
	"errors"

	appterrors "medbook/internal/appointments/errors"
	apptrepository "medbook/internal/appointments/repository"
	rxerrors "medbook/internal/prescriptions/errors"
	"medbook/internal/prescriptions/repository"
	"medbook/internal/prescriptions/validator"
	usersrepository "medbook/internal/users/repository"
	"medbook/pkg/config"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/events"
	"medbook/pkg/model"
	"medbook/pkg/sanitizer"
)

// IssueRequest is the prescription payload. DoctorID and PatientID come
// from the requester and the referenced appointment.
type IssueRequest struct {
	AppointmentID string             `json:"appointment_id"`
	Medications   []model.Medication `json:"medications"`
	Notes         string             `json:"notes,omitempty"`
}

type PrescriptionService interface {
	Issue(ctx context.Context, requester model.Requester, req *IssueRequest) (*model.PrescriptionView, error)
	ListMine(ctx context.Context, requester model.Requester) ([]*model.PrescriptionView, error)
	Get(ctx context.Context, requester model.Requester, id string) (*model.PrescriptionView, error)
	ListByAppointment(ctx context.Context, requester model.Requester, appointmentID string) ([]*model.PrescriptionView, error)
}

type prescriptionService struct {
	repo         repository.PrescriptionRepository
	appointments apptrepository.AppointmentRepository
	users        usersrepository.UserRepository
	validator    *validator.PrescriptionValidator
	publisher    events.Publisher
	cfg          *config.Config
}

func NewPrescriptionService(
	repo repository.PrescriptionRepository,
	appointments apptrepository.AppointmentRepository,
	users usersrepository.UserRepository,
	validator *validator.PrescriptionValidator,
	publisher events.Publisher,
	cfg *config.Config,
) PrescriptionService {
	return &prescriptionService{
		repo:         repo,
		appointments: appointments,
		users:        users,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (s *prescriptionService) Issue(ctx context.Context, requester model.Requester, req *IssueRequest) (*model.PrescriptionView, error) {
	if requester.Role != model.RoleDoctor {
		return nil, apperrors.Forbidden("Only doctors may issue prescriptions")
	}
	if req.AppointmentID == "" {
		return nil, apperrors.InvalidInput("appointment_id is required")
	}
	if len(req.Medications) == 0 {
		return nil, apperrors.InvalidInput("At least one medication is required")
	}

	appointment, err := s.findAppointment(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.DoctorID != requester.ID {
		return nil, apperrors.Forbidden("You may only prescribe for your own appointments")
	}

	prescription := &model.Prescription{
		AppointmentID: appointment.ID,
		DoctorID:      requester.ID,
		PatientID:     appointment.PatientID,
		Medications:   sanitizeMedications(req.Medications),
		Notes:         sanitizer.SanitizeFreeText(req.Notes),
	}

	if err := s.validator.Validate(prescription); err != nil {
		s.cfg.Log.Warn("Prescription validation failed", "doctor_id", requester.ID, "error", err)
		return nil, apperrors.Validation("Invalid prescription input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, prescription); err != nil {
		s.cfg.Log.Error("Failed to create prescription", "error", err)
		return nil, apperrors.Internal("Failed to issue prescription", err)
	}

	s.cfg.Log.Info("Prescription issued",
		"id", prescription.ID,
		"appointment_id", prescription.AppointmentID,
		"doctor_id", prescription.DoctorID,
		"patient_id", prescription.PatientID,
	)
	s.publisher.Publish(ctx, events.PrescriptionIssued, prescription.ID, prescription)

	return s.buildView(ctx, prescription), nil
}

func (s *prescriptionService) ListMine(ctx context.Context, requester model.Requester) ([]*model.PrescriptionView, error) {
	var (
		prescriptions []*model.Prescription
		err           error
	)

	switch requester.Role {
	case model.RolePatient:
		prescriptions, err = s.repo.FindByPatient(ctx, requester.ID)
	case model.RoleDoctor:
		prescriptions, err = s.repo.FindByDoctor(ctx, requester.ID)
	default:
		return nil, apperrors.Forbidden("Admins query prescriptions per appointment")
	}
	if err != nil {
		s.cfg.Log.Error("Failed to list prescriptions", "error", err)
		return nil, apperrors.Internal("Failed to retrieve prescriptions", err)
	}

	return s.joinSummaries(ctx, prescriptions)
}

func (s *prescriptionService) Get(ctx context.Context, requester model.Requester, id string) (*model.PrescriptionView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Prescription ID cannot be empty")
	}

	prescription, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, rxerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Prescription", id)
		}
		if errors.Is(err, rxerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid prescription ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve prescription", err)
	}

	if requester.Role != model.RoleAdmin &&
		requester.ID != prescription.PatientID &&
		requester.ID != prescription.DoctorID {
		return nil, apperrors.Forbidden("You do not have access to this prescription")
	}

	return s.buildView(ctx, prescription), nil
}

func (s *prescriptionService) ListByAppointment(ctx context.Context, requester model.Requester, appointmentID string) ([]*model.PrescriptionView, error) {
	appointment, err := s.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if requester.Role != model.RoleAdmin &&
		requester.ID != appointment.PatientID &&
		requester.ID != appointment.DoctorID {
		return nil, apperrors.Forbidden("You do not have access to this appointment")
	}

	prescriptions, err := s.repo.FindByAppointment(ctx, appointmentID)
	if err != nil {
		s.cfg.Log.Error("Failed to list prescriptions", "appointment_id", appointmentID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve prescriptions", err)
	}

	return s.joinSummaries(ctx, prescriptions)
}

func (s *prescriptionService) findAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appointment, nil
}

func (s *prescriptionService) buildView(ctx context.Context, prescription *model.Prescription) *model.PrescriptionView {
	view := &model.PrescriptionView{Prescription: *prescription}

	summaries, err := s.users.FindSummaries(ctx, []string{prescription.PatientID, prescription.DoctorID})
	if err != nil {
		s.cfg.Log.Warn("Failed to join user summaries", "prescription_id", prescription.ID, "error", err)
		view.Patient = model.UserSummary{ID: prescription.PatientID}
		view.Doctor = model.UserSummary{ID: prescription.DoctorID}
		return view
	}

	view.Patient = summaries[prescription.PatientID]
	view.Doctor = summaries[prescription.DoctorID]
	return view
}

func (s *prescriptionService) joinSummaries(ctx context.Context, prescriptions []*model.Prescription) ([]*model.PrescriptionView, error) {
	views := make([]*model.PrescriptionView, 0, len(prescriptions))
	if len(prescriptions) == 0 {
		return views, nil
	}

	seen := make(map[string]struct{}, len(prescriptions)*2)
	ids := make([]string, 0, len(prescriptions)*2)
	for _, p := range prescriptions {
		for _, id := range []string{p.PatientID, p.DoctorID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	summaries, err := s.users.FindSummaries(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to join user summaries", "error", err)
		return nil, apperrors.Internal("Failed to retrieve prescriptions", err)
	}

	for _, p := range prescriptions {
		views = append(views, &model.PrescriptionView{
			Prescription: *p,
			Patient:      summaries[p.PatientID],
			Doctor:       summaries[p.DoctorID],
		})
	}
	return views, nil
}

func sanitizeMedications(medications []model.Medication) []model.Medication {
	out := make([]model.Medication, len(medications))
	for i, m := range medications {
		out[i] = model.Medication{
			Name:         sanitizer.SanitizeName(m.Name),
			Dose:         sanitizer.SanitizeName(m.Dose),
			Frequency:    sanitizer.SanitizeName(m.Frequency),
			Duration:     sanitizer.SanitizeName(m.Duration),
			Instructions: sanitizer.SanitizeFreeText(m.Instructions),
		}
	}
	return out
}
