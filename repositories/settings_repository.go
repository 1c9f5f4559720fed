// repositories/settings_repository.go
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
)

type SettingsRepository struct {
	safetyCollection       *mongo.Collection
	notificationCollection *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{
		safetyCollection:       db.Collection("safety_settings"),
		notificationCollection: db.Collection("notification_settings"),
	}
}

func (sr *SettingsRepository) CreateIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := sr.safetyCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = sr.notificationCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: unique,
	})
	return err
}

// GetSafetySettings falls back to defaults when the user has never saved
// settings; the defaults are not persisted until the first update.
func (sr *SettingsRepository) GetSafetySettings(ctx context.Context, userID string) (*models.SafetySettings, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	var settings models.SafetySettings
	err = sr.safetyCollection.FindOne(ctx, bson.M{"userId": userObjectID}).Decode(&settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.DefaultSafetySettings(userObjectID), nil
		}
		return nil, fmt.Errorf("failed to get safety settings: %w", err)
	}

	return &settings, nil
}

func (sr *SettingsRepository) SaveSafetySettings(ctx context.Context, settings *models.SafetySettings) error {
	settings.UpdatedAt = time.Now()

	filter := bson.M{"userId": settings.UserID}
	update := bson.M{"$set": bson.M{
		"sosCountdownSeconds":        settings.SOSCountdownSeconds,
		"autoCheckInIntervalMinutes": settings.AutoCheckInIntervalMinutes,
		"shareLocationWithContacts":  settings.ShareLocationWithContacts,
		"femaleOnlyServices":         settings.FemaleOnlyServices,
		"updatedAt":                  settings.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := sr.safetyCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save safety settings: %w", err)
	}

	return nil
}

func (sr *SettingsRepository) GetNotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	var settings models.NotificationSettings
	err = sr.notificationCollection.FindOne(ctx, bson.M{"userId": userObjectID}).Decode(&settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.DefaultNotificationSettings(userObjectID), nil
		}
		return nil, fmt.Errorf("failed to get notification settings: %w", err)
	}

	return &settings, nil
}

func (sr *SettingsRepository) SaveNotificationSettings(ctx context.Context, settings *models.NotificationSettings) error {
	settings.UpdatedAt = time.Now()

	filter := bson.M{"userId": settings.UserID}
	update := bson.M{"$set": bson.M{
		"pushEnabled":  settings.PushEnabled,
		"emailEnabled": settings.EmailEnabled,
		"smsEnabled":   settings.SMSEnabled,
		"soundEnabled": settings.SoundEnabled,
		"categories":   settings.Categories,
		"quietHours":   settings.QuietHours,
		"updatedAt":    settings.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := sr.notificationCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save notification settings: %w", err)
	}

	return nil
}

// ListAutoCheckInUsers feeds the startup re-arm pass.
func (sr *SettingsRepository) ListAutoCheckInUsers(ctx context.Context) ([]models.SafetySettings, error) {
	filter := bson.M{"autoCheckInIntervalMinutes": bson.M{"$gt": 0}}

	cursor, err := sr.safetyCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto check-in users: %w", err)
	}
	defer cursor.Close(ctx)

	var settings []models.SafetySettings
	if err = cursor.All(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode safety settings: %w", err)
	}

	return settings, nil
}
