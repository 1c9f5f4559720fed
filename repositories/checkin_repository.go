// repositories/checkin_repository.go
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

type CheckInRepository struct {
	collection *mongo.Collection
}

func NewCheckInRepository(db *mongo.Database) *CheckInRepository {
	return &CheckInRepository{
		collection: db.Collection("checkins"),
	}
}

func (cr *CheckInRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	}

	_, err := cr.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create appends an immutable check-in record.
func (cr *CheckInRepository) Create(ctx context.Context, checkIn *models.CheckIn) error {
	if checkIn.Timestamp.IsZero() {
		checkIn.Timestamp = time.Now()
	}

	result, err := cr.collection.InsertOne(ctx, checkIn)
	if err != nil {
		return fmt.Errorf("failed to create check-in: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		checkIn.ID = oid
	}

	return nil
}

func (cr *CheckInRepository) GetLatest(ctx context.Context, userID string) (*models.CheckIn, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewNotFoundError("Check-in")
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var checkIn models.CheckIn
	err = cr.collection.FindOne(ctx, bson.M{"userId": userObjectID}, opts).Decode(&checkIn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Check-in")
		}
		return nil, fmt.Errorf("failed to get latest check-in: %w", err)
	}

	return &checkIn, nil
}

func (cr *CheckInRepository) GetUserCheckIns(ctx context.Context, userID string, limit int) ([]models.CheckIn, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewNotFoundError("Check-in")
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := cr.collection.Find(ctx, bson.M{"userId": userObjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find check-ins: %w", err)
	}
	defer cursor.Close(ctx)

	var checkIns []models.CheckIn
	if err = cursor.All(ctx, &checkIns); err != nil {
		return nil, fmt.Errorf("failed to decode check-ins: %w", err)
	}

	return checkIns, nil
}
