package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "medbook/internal/appointments/errors"
	"medbook/pkg/config"
	"medbook/pkg/model"
)

const (
	SlotLockCollectionName = "Slot_locks"
)

// SlotLockRepository serializes concurrent booking attempts before the
// transactional occupancy check. Lock documents carry a TTL so a crashed
// process cannot hold a slot hostage.
type SlotLockRepository interface {
	Acquire(ctx context.Context, lockID string, ttl time.Duration) error
	Release(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollectionName),
	}
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.SlotLock{
		ID:        lockID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	// Inserting on a fixed _id makes the second writer lose.
	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	return nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, lockID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID}); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}

	return nil
}
