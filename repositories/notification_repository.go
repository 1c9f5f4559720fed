// repositories/notification_repository.go
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

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

func (nr *NotificationRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "category", Value: 1}},
		},
	}

	_, err := nr.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (nr *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	result, err := nr.collection.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		notification.ID = oid
	}

	return nil
}

func (nr *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.NewNotFoundError("Notification")
	}

	var notification models.Notification
	err = nr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Notification")
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &notification, nil
}

// GetUserNotifications reads in insertion order, newest first.
func (nr *NotificationRepository) GetUserNotifications(ctx context.Context, req models.GetNotificationsRequest) ([]models.Notification, int64, error) {
	userObjectID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return nil, 0, utils.NewNotFoundError("Notification")
	}

	filter := bson.M{"userId": userObjectID}
	if req.Category != "" {
		filter["category"] = req.Category
	}
	if req.Unread {
		filter["isRead"] = false
	}

	total, err := nr.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := nr.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, total, nil
}

func (nr *NotificationRepository) GetByCategory(ctx context.Context, userID, category string) ([]models.Notification, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewNotFoundError("Notification")
	}

	filter := bson.M{"userId": userObjectID, "category": category}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := nr.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, nil
}

func (nr *NotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	return nr.setRead(ctx, id, true)
}

func (nr *NotificationRepository) MarkAsUnread(ctx context.Context, id string) error {
	return nr.setRead(ctx, id, false)
}

func (nr *NotificationRepository) setRead(ctx context.Context, id string, read bool) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return utils.NewNotFoundError("Notification")
	}

	update := bson.M{"isRead": read}
	if read {
		update["readAt"] = time.Now()
	}

	result, err := nr.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("Notification")
	}

	return nil
}

func (nr *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return utils.NewNotFoundError("Notification")
	}

	filter := bson.M{"userId": userObjectID, "isRead": false}
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": time.Now()}}

	_, err = nr.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

func (nr *NotificationRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return utils.NewNotFoundError("Notification")
	}

	result, err := nr.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("Notification")
	}

	return nil
}

func (nr *NotificationRepository) DeleteAll(ctx context.Context, userID string) error {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return utils.NewNotFoundError("Notification")
	}

	_, err = nr.collection.DeleteMany(ctx, bson.M{"userId": userObjectID})
	if err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}

	return nil
}

func (nr *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, utils.NewNotFoundError("Notification")
	}

	count, err := nr.collection.CountDocuments(ctx, bson.M{"userId": userObjectID, "isRead": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

func (nr *NotificationRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	result, err := nr.collection.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}

	return result.DeletedCount, nil
}
