package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "medbook/internal/appointments/errors"
	"medbook/pkg/config"
	"medbook/pkg/model"
)

const (
	CollectionName = "Appointments"
)

// activeStatuses are the statuses that occupy a slot.
var activeStatuses = []model.AppointmentStatus{model.StatusPending, model.StatusConfirmed}

// ListFilter narrows a role-scoped listing. Empty fields are not applied.
type ListFilter struct {
	PatientID string
	DoctorID  string
	Status    model.AppointmentStatus
	From      *time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	SlotOccupied(ctx context.Context, doctorID string, date time.Time, startTime string) (bool, error)
	Find(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, id string, appointment *model.Appointment) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, appointment)
	if err != nil {
		// The partial unique index on (doctor_id, date, start_time) covers
		// pending and confirmed rows, so a duplicate here is a live slot.
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appointment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidID, id)
	}

	var appointment model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appointment, nil
}

func (r *mongoAppointmentRepository) SlotOccupied(ctx context.Context, doctorID string, date time.Time, startTime string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"doctor_id":  doctorID,
		"date":       date,
		"start_time": startTime,
		"status":     bson.M{"$in": activeStatuses},
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check slot occupancy: %w", err)
	}

	return count > 0, nil
}

func (r *mongoAppointmentRepository) Find(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appointments, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	return count, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, id string, appointment *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"date":       appointment.Date,
			"start_time": appointment.StartTime,
			"end_time":   appointment.EndTime,
			"status":     appointment.Status,
			"reason":     appointment.Reason,
			"notes":      appointment.Notes,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func buildQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.PatientID != "" {
		query["patient_id"] = filter.PatientID
	}
	if filter.DoctorID != "" {
		query["doctor_id"] = filter.DoctorID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.From != nil {
		query["date"] = bson.M{"$gte": *filter.From}
	}
	return query
}
