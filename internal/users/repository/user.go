package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	userserrors "medbook/internal/users/errors"
	"medbook/pkg/config"
	"medbook/pkg/model"
)

const (
	CollectionName = "Users"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindDoctorByID(ctx context.Context, id string) (*model.User, error)
	FindDoctors(ctx context.Context, specialization string) ([]*model.User, error)
	FindPatients(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, id string, user *model.User) error
	FindSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoUserRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return userserrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
	}

	var user model.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return &user, nil
}

func (r *mongoUserRepository) FindDoctorByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "role": model.RoleDoctor}

	var user model.User
	err = r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find doctor: %w", err)
	}

	return &user, nil
}

func (r *mongoUserRepository) FindDoctors(ctx context.Context, specialization string) ([]*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"role": model.RoleDoctor}
	if specialization != "" {
		filter["specialization"] = bson.M{
			"$regex":   regexp.QuoteMeta(specialization),
			"$options": "i",
		}
	}

	return r.findUsers(ctx, filter, bson.D{{Key: "name", Value: 1}})
}

func (r *mongoUserRepository) FindPatients(ctx context.Context) ([]*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findUsers(ctx, bson.M{"role": model.RolePatient}, bson.D{{Key: "name", Value: 1}})
}

func (r *mongoUserRepository) findUsers(ctx context.Context, filter bson.M, sort bson.D) ([]*model.User, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, id string, user *model.User) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":               user.Name,
			"phone":              user.Phone,
			"dob":                user.DOB,
			"gender":             user.Gender,
			"address":            user.Address,
			"medical_history":    user.MedicalHistory,
			"specialization":     user.Specialization,
			"availability_slots": user.Availability,
			"updated_at":         time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return userserrors.ErrNotFound
	}

	return nil
}

func (r *mongoUserRepository) FindSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, oid)
	}

	projection := bson.M{"_id": 1, "name": 1, "role": 1, "specialization": 1}
	cursor, err := r.collection.Find(ctx,
		bson.M{"_id": bson.M{"$in": objectIDs}},
		options.Find().SetProjection(projection),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find user summaries: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := make(map[string]model.UserSummary, len(ids))
	for cursor.Next(ctx) {
		var raw struct {
			ID             primitive.ObjectID `bson:"_id"`
			Name           string             `bson:"name"`
			Role           model.Role         `bson:"role"`
			Specialization string             `bson:"specialization"`
		}
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode user summary: %w", err)
		}
		summaries[raw.ID.Hex()] = model.UserSummary{
			ID:             raw.ID.Hex(),
			Name:           raw.Name,
			Role:           raw.Role,
			Specialization: raw.Specialization,
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user summaries: %w", err)
	}

	return summaries, nil
}
