// repositories/sos_repository.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safetrip/models"
	"safetrip/utils"
)

type SOSRepository struct {
	collection *mongo.Collection
}

func NewSOSRepository(db *mongo.Database) *SOSRepository {
	return &SOSRepository{
		collection: db.Collection("sos_alerts"),
	}
}

func (sr *SOSRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	_, err := sr.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (sr *SOSRepository) Create(ctx context.Context, alert *models.SOSAlert) error {
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = alert.CreatedAt

	result, err := sr.collection.InsertOne(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to create SOS alert: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		alert.ID = oid
	}

	return nil
}

func (sr *SOSRepository) GetByID(ctx context.Context, id string) (*models.SOSAlert, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrAlertNotFound
	}

	var alert models.SOSAlert
	err = sr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get SOS alert: %w", err)
	}

	return &alert, nil
}

// GetActiveByUser returns the user's single active alert, or a not-found
// error when none exists. At most one active alert per user is enforced
// by the state machine; reads sort newest-first as a safety net.
func (sr *SOSRepository) GetActiveByUser(ctx context.Context, userID string) (*models.SOSAlert, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.ErrAlertNotFound
	}

	filter := bson.M{"userId": userObjectID, "status": models.SOSStatusActive}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var alert models.SOSAlert
	err = sr.collection.FindOne(ctx, filter, opts).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get active SOS alert: %w", err)
	}

	return &alert, nil
}

func (sr *SOSRepository) UpdateStatus(ctx context.Context, id, status string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return utils.ErrAlertNotFound
	}

	update := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if status == models.SOSStatusResolved || status == models.SOSStatusFalseAlarm {
		update["resolvedAt"] = time.Now()
	}

	result, err := sr.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update SOS alert: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrAlertNotFound
	}

	return nil
}

func (sr *SOSRepository) GetUserAlerts(ctx context.Context, userID string, limit int) ([]models.SOSAlert, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.ErrAlertNotFound
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := sr.collection.Find(ctx, bson.M{"userId": userObjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find SOS alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.SOSAlert
	if err = cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode SOS alerts: %w", err)
	}

	return alerts, nil
}
