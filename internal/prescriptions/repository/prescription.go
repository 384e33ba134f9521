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

	rxerrors "medbook/internal/prescriptions/errors"
	"medbook/pkg/config"
	"medbook/pkg/model"
)

const (
	CollectionName = "Prescriptions"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *model.Prescription) error
	FindByID(ctx context.Context, id string) (*model.Prescription, error)
	FindByPatient(ctx context.Context, patientID string) ([]*model.Prescription, error)
	FindByDoctor(ctx context.Context, doctorID string) ([]*model.Prescription, error)
	FindByAppointment(ctx context.Context, appointmentID string) ([]*model.Prescription, error)
}

type mongoPrescriptionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPrescriptionRepository(cfg *config.Config) PrescriptionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPrescriptionRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPrescriptionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPrescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	prescription.IssuedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, prescription)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		prescription.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPrescriptionRepository) FindByID(ctx context.Context, id string) (*model.Prescription, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", rxerrors.ErrInvalidID, id)
	}

	var prescription model.Prescription
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&prescription)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rxerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find prescription: %w", err)
	}

	return &prescription, nil
}

func (r *mongoPrescriptionRepository) FindByPatient(ctx context.Context, patientID string) ([]*model.Prescription, error) {
	return r.findPrescriptions(ctx, bson.M{"patient_id": patientID})
}

func (r *mongoPrescriptionRepository) FindByDoctor(ctx context.Context, doctorID string) ([]*model.Prescription, error) {
	return r.findPrescriptions(ctx, bson.M{"doctor_id": doctorID})
}

func (r *mongoPrescriptionRepository) FindByAppointment(ctx context.Context, appointmentID string) ([]*model.Prescription, error) {
	return r.findPrescriptions(ctx, bson.M{"appointment_id": appointmentID})
}

func (r *mongoPrescriptionRepository) findPrescriptions(ctx context.Context, filter bson.M) ([]*model.Prescription, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	// Newest first.
	opts := options.Find().SetSort(bson.D{{Key: "issued_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find prescriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var prescriptions []*model.Prescription
	if err = cursor.All(ctx, &prescriptions); err != nil {
		return nil, fmt.Errorf("failed to decode prescriptions: %w", err)
	}

	return prescriptions, nil
}
