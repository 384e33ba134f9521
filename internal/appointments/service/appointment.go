package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appterrors "medbook/internal/appointments/errors"
	"medbook/internal/appointments/repository"
	"medbook/internal/appointments/validator"
	userserrors "medbook/internal/users/errors"
	usersrepository "medbook/internal/users/repository"
	"medbook/pkg/config"
	mongodb "medbook/pkg/db/mongo"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/events"
	"medbook/pkg/model"
	"medbook/pkg/sanitizer"
)

const (
	// slotLockTTL bounds how long a crashed booking attempt can block a
	// slot before the TTL monitor reaps the lock document.
	slotLockTTL = 10 * time.Second

	slotConflictMessage = "This time slot is already booked"
)

// BookRequest is the booking payload. PatientID comes from the requester,
// never from the body.
type BookRequest struct {
	DoctorID  string    `json:"doctor_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Reason    string    `json:"reason,omitempty"`
}

type AppointmentService interface {
	Book(ctx context.Context, requester model.Requester, req *BookRequest) (*model.AppointmentView, error)
	List(ctx context.Context, requester model.Requester, filter model.AppointmentFilter, limit int, offset int64) ([]*model.AppointmentView, int64, error)
	Get(ctx context.Context, requester model.Requester, id string) (*model.AppointmentView, error)
	TransitionStatus(ctx context.Context, requester model.Requester, id string, status model.AppointmentStatus, notes *string) (*model.AppointmentView, error)
	Edit(ctx context.Context, requester model.Requester, id string, update *model.AppointmentUpdate) (*model.AppointmentView, error)
	Cancel(ctx context.Context, requester model.Requester, id string) (*model.AppointmentView, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	locks     repository.SlotLockRepository
	users     usersrepository.UserRepository
	validator *validator.AppointmentValidator
	tx        mongodb.TransactionManager
	publisher events.Publisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	locks repository.SlotLockRepository,
	users usersrepository.UserRepository,
	validator *validator.AppointmentValidator,
	tx mongodb.TransactionManager,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		locks:     locks,
		users:     users,
		validator: validator,
		tx:        tx,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *appointmentService) Book(ctx context.Context, requester model.Requester, req *BookRequest) (*model.AppointmentView, error) {
	if requester.Role != model.RolePatient {
		return nil, apperrors.Forbidden("Only patients may book appointments")
	}
	if req.DoctorID == "" || req.Date.IsZero() || req.StartTime == "" || req.EndTime == "" {
		return nil, apperrors.InvalidInput("doctor_id, date, start_time, and end_time are required")
	}

	appointment := &model.Appointment{
		PatientID: requester.ID,
		DoctorID:  req.DoctorID,
		Date:      normalizeDate(req.Date),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.StatusPending,
		Reason:    sanitizer.SanitizeFreeText(req.Reason),
	}

	if err := s.validator.Validate(appointment); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "patient_id", requester.ID, "error", err)
		return nil, apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
	}

	doctor, err := s.users.FindDoctorByID(ctx, req.DoctorID)
	if err != nil {
		return nil, s.mapDoctorLookupError(err, req.DoctorID)
	}

	lockID := slotLockID(appointment.DoctorID, appointment.Date, appointment.StartTime)
	if err := s.locks.Acquire(ctx, lockID, slotLockTTL); err != nil {
		if errors.Is(err, appterrors.ErrSlotTaken) {
			return nil, apperrors.Conflict(slotConflictMessage)
		}
		return nil, apperrors.Internal("Failed to reserve time slot", err)
	}
	defer func() {
		// The request context may already be done; release on its own clock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer cancel()
		if err := s.locks.Release(releaseCtx, lockID); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
		}
	}()

	err = s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		occupied, err := s.repo.SlotOccupied(sessCtx, appointment.DoctorID, appointment.Date, appointment.StartTime)
		if err != nil {
			return apperrors.Internal("Failed to check slot availability", err)
		}
		if occupied {
			return apperrors.Conflict(slotConflictMessage)
		}

		if err := s.repo.Create(sessCtx, appointment); err != nil {
			if errors.Is(err, appterrors.ErrSlotTaken) {
				return apperrors.Conflict(slotConflictMessage)
			}
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to book appointment", err)
	}

	s.cfg.Log.Info("Appointment booked",
		"id", appointment.ID,
		"patient_id", appointment.PatientID,
		"doctor_id", appointment.DoctorID,
		"date", appointment.Date.Format("2006-01-02"),
		"start_time", appointment.StartTime,
	)
	s.publisher.Publish(ctx, events.AppointmentBooked, appointment.ID, appointment)

	view := s.buildView(ctx, appointment)
	view.Doctor = doctor.Summary()
	return view, nil
}

func (s *appointmentService) List(ctx context.Context, requester model.Requester, filter model.AppointmentFilter, limit int, offset int64) ([]*model.AppointmentView, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.InvalidInput("Status must be one of: pending, confirmed, completed, cancelled")
	}

	query := repository.ListFilter{Status: filter.Status}
	switch requester.Role {
	case model.RolePatient:
		query.PatientID = requester.ID
	case model.RoleDoctor:
		query.DoctorID = requester.ID
	case model.RoleAdmin:
		// Admins see everything.
	default:
		return nil, 0, apperrors.Forbidden("Unknown role")
	}
	if filter.UpcomingOnly {
		today := normalizeDate(time.Now().UTC())
		query.From = &today
	}

	var (
		wg           sync.WaitGroup
		appointments []*model.Appointment
		totalCount   int64
		findErr      error
		countErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		appointments, findErr = s.repo.Find(ctx, query, limit, offset)
	}()
	go func() {
		defer wg.Done()
		totalCount, countErr = s.repo.Count(ctx, query)
	}()
	wg.Wait()

	if findErr != nil {
		s.cfg.Log.Error("Failed to list appointments", "error", findErr)
		return nil, 0, apperrors.Internal("Failed to retrieve appointments", findErr)
	}
	if countErr != nil {
		s.cfg.Log.Error("Failed to count appointments", "error", countErr)
		return nil, 0, apperrors.Internal("Failed to retrieve appointments", countErr)
	}

	views, err := s.joinSummaries(ctx, appointments)
	if err != nil {
		return nil, 0, err
	}
	return views, totalCount, nil
}

func (s *appointmentService) Get(ctx context.Context, requester model.Requester, id string) (*model.AppointmentView, error) {
	appointment, err := s.findAuthorized(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, appointment), nil
}

func (s *appointmentService) TransitionStatus(ctx context.Context, requester model.Requester, id string, status model.AppointmentStatus, notes *string) (*model.AppointmentView, error) {
	if !status.Valid() {
		return nil, apperrors.InvalidInput("Status must be one of: pending, confirmed, completed, cancelled")
	}
	if requester.Role == model.RolePatient {
		return nil, apperrors.Forbidden("Patients may not change appointment status")
	}

	appointment, err := s.findAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.Role == model.RoleDoctor && requester.ID != appointment.DoctorID {
		return nil, apperrors.Forbidden("Doctors may only update their own appointments")
	}

	previous := appointment.Status
	appointment.Status = status
	if notes != nil {
		appointment.Notes = sanitizer.SanitizeFreeText(*notes)
	}

	if err := s.updateAppointment(ctx, appointment); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Appointment status changed",
		"id", appointment.ID,
		"from", previous,
		"to", status,
		"actor_id", requester.ID,
	)
	s.publisher.Publish(ctx, events.AppointmentStatusChanged, appointment.ID, map[string]any{
		"appointment_id": appointment.ID,
		"from":           previous,
		"to":             status,
	})

	return s.buildView(ctx, appointment), nil
}

func (s *appointmentService) Edit(ctx context.Context, requester model.Requester, id string, update *model.AppointmentUpdate) (*model.AppointmentView, error) {
	appointment, err := s.findAuthorized(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	if update.Date != nil {
		appointment.Date = normalizeDate(*update.Date)
	}
	if update.StartTime != "" {
		appointment.StartTime = update.StartTime
	}
	if update.EndTime != "" {
		appointment.EndTime = update.EndTime
	}
	if update.Reason != nil {
		appointment.Reason = sanitizer.SanitizeFreeText(*update.Reason)
	}
	if update.Notes != nil {
		appointment.Notes = sanitizer.SanitizeFreeText(*update.Notes)
	}

	if err := s.updateAppointment(ctx, appointment); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Appointment updated", "id", appointment.ID, "actor_id", requester.ID)
	return s.buildView(ctx, appointment), nil
}

func (s *appointmentService) Cancel(ctx context.Context, requester model.Requester, id string) (*model.AppointmentView, error) {
	appointment, err := s.findAuthorized(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	// Cancelling twice is a no-op, not an error.
	if appointment.Status == model.StatusCancelled {
		return s.buildView(ctx, appointment), nil
	}

	appointment.Status = model.StatusCancelled
	if err := s.updateAppointment(ctx, appointment); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Appointment cancelled", "id", appointment.ID, "actor_id", requester.ID)
	s.publisher.Publish(ctx, events.AppointmentCancelled, appointment.ID, appointment)

	return s.buildView(ctx, appointment), nil
}

// findAuthorized loads an appointment and applies the shared access
// predicate: admins, the booking patient, and the appointment's doctor.
func (s *appointmentService) findAuthorized(ctx context.Context, requester model.Requester, id string) (*model.Appointment, error) {
	appointment, err := s.findAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if requester.Role != model.RoleAdmin &&
		requester.ID != appointment.PatientID &&
		requester.ID != appointment.DoctorID {
		return nil, apperrors.Forbidden("You do not have access to this appointment")
	}

	return appointment, nil
}

func (s *appointmentService) findAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
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

func (s *appointmentService) updateAppointment(ctx context.Context, appointment *model.Appointment) error {
	if err := s.repo.Update(ctx, appointment.ID, appointment); err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Appointment", appointment.ID)
		}
		if errors.Is(err, appterrors.ErrSlotTaken) {
			return apperrors.Conflict(slotConflictMessage)
		}
		return apperrors.Internal("Failed to update appointment", err)
	}
	return nil
}

// buildView joins identity summaries onto a single appointment. Lookup
// failures degrade to bare IDs rather than failing the request.
func (s *appointmentService) buildView(ctx context.Context, appointment *model.Appointment) *model.AppointmentView {
	view := &model.AppointmentView{Appointment: *appointment}

	summaries, err := s.users.FindSummaries(ctx, []string{appointment.PatientID, appointment.DoctorID})
	if err != nil {
		s.cfg.Log.Warn("Failed to join user summaries", "appointment_id", appointment.ID, "error", err)
		view.Patient = model.UserSummary{ID: appointment.PatientID}
		view.Doctor = model.UserSummary{ID: appointment.DoctorID}
		return view
	}

	view.Patient = summaries[appointment.PatientID]
	view.Doctor = summaries[appointment.DoctorID]
	return view
}

func (s *appointmentService) joinSummaries(ctx context.Context, appointments []*model.Appointment) ([]*model.AppointmentView, error) {
	views := make([]*model.AppointmentView, 0, len(appointments))
	if len(appointments) == 0 {
		return views, nil
	}

	seen := make(map[string]struct{}, len(appointments)*2)
	ids := make([]string, 0, len(appointments)*2)
	for _, a := range appointments {
		for _, id := range []string{a.PatientID, a.DoctorID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	summaries, err := s.users.FindSummaries(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to join user summaries", "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}

	for _, a := range appointments {
		views = append(views, &model.AppointmentView{
			Appointment: *a,
			Patient:     summaries[a.PatientID],
			Doctor:      summaries[a.DoctorID],
		})
	}
	return views, nil
}

func (s *appointmentService) mapDoctorLookupError(err error, doctorID string) error {
	if errors.Is(err, userserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Doctor", doctorID)
	}
	if errors.Is(err, userserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid doctor ID format")
	}
	return apperrors.Internal("Failed to retrieve doctor", err)
}

// normalizeDate pins a calendar date to UTC midnight so slot exclusivity
// compares dates, not instants.
func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func slotLockID(doctorID string, date time.Time, startTime string) string {
	return fmt.Sprintf("slot_%s_%s_%s", doctorID, date.Format("2006-01-02"), startTime)
}
