package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketbase/identity-service/internal/core/domain"
	"github.com/marketbase/identity-service/internal/core/ports"
)

const activityCollection = "auth_activity"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
// The collection is an append-only audit trail.
type ActivityRepository struct {
	db *mongo.Database
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *mongo.Database) ports.ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert persists an auth activity event.
func (r *ActivityRepository) Insert(ctx context.Context, event *domain.ActivityEvent) error {
	doc := bson.M{
		"user_id":   event.UserID,
		"action":    string(event.Action),
		"timestamp": event.Timestamp.UTC(),
	}
	if event.IP != "" {
		doc["ip"] = event.IP
	}

	if _, err := r.db.Collection(activityCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity event: %w", err)
	}
	return nil
}
