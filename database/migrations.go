package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
}

// migrationRecord tracks applied migrations
type migrationRecord struct {
	Version   int       `bson:"version"`
	AppliedAt time.Time `bson:"appliedAt"`
}

// migrations contains all database migrations
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create sos_alerts collection with indexes",
		Up:          createSOSAlertsCollection,
	},
	{
		Version:     2,
		Description: "Create checkins collection with indexes",
		Up:          createCheckInsCollection,
	},
	{
		Version:     3,
		Description: "Create emergency_contacts collection with indexes",
		Up:          createEmergencyContactsCollection,
	},
	{
		Version:     4,
		Description: "Create notifications collection with indexes",
		Up:          createNotificationsCollection,
	},
	{
		Version:     5,
		Description: "Create settings collections with indexes",
		Up:          createSettingsCollections,
	},
}

// RunMigrations applies every migration not yet recorded in the
// migrations collection.
func RunMigrations(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	migrationsColl := db.Collection("migrations")

	for _, migration := range migrations {
		var record migrationRecord
		err := migrationsColl.FindOne(ctx, bson.M{"version": migration.Version}).Decode(&record)
		if err == nil {
			continue
		}
		if err != mongo.ErrNoDocuments {
			return fmt.Errorf("failed to check migration %d: %w", migration.Version, err)
		}

		logrus.Infof("Applying migration %d: %s", migration.Version, migration.Description)
		if err := migration.Up(db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = migrationsColl.InsertOne(ctx, migrationRecord{
			Version:   migration.Version,
			AppliedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func createSOSAlertsCollection(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	_, err := db.Collection("sos_alerts").Indexes().CreateMany(ctx, indexes)
	return err
}

func createCheckInsCollection(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	}

	_, err := db.Collection("checkins").Indexes().CreateMany(ctx, indexes)
	return err
}

func createEmergencyContactsCollection(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isPrimary", Value: 1}},
		},
	}

	_, err := db.Collection("emergency_contacts").Indexes().CreateMany(ctx, indexes)
	return err
}

func createNotificationsCollection(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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

	_, err := db.Collection("notifications").Indexes().CreateMany(ctx, indexes)
	return err
}

func createSettingsCollections(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := db.Collection("safety_settings").Indexes().CreateOne(ctx, userIndex); err != nil {
		return err
	}
	_, err := db.Collection("notification_settings").Indexes().CreateOne(ctx, userIndex)
	return err
}
