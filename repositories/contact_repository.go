// repositories/contact_repository.go
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

type ContactRepository struct {
	collection *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{
		collection: db.Collection("emergency_contacts"),
	}
}

func (cr *ContactRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isPrimary", Value: -1}},
		},
	}

	_, err := cr.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (cr *ContactRepository) Create(ctx context.Context, contact *models.EmergencyContact) error {
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt

	// A new primary displaces the old one before insertion.
	if contact.IsPrimary {
		if err := cr.demoteAll(ctx, contact.UserID); err != nil {
			return err
		}
	}

	result, err := cr.collection.InsertOne(ctx, contact)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		contact.ID = oid
	}

	return nil
}

func (cr *ContactRepository) GetByID(ctx context.Context, id string) (*models.EmergencyContact, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrContactNotFound
	}

	var contact models.EmergencyContact
	err = cr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&contact)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return &contact, nil
}

func (cr *ContactRepository) GetUserContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.ErrContactNotFound
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "isPrimary", Value: -1},
		{Key: "createdAt", Value: 1},
	})

	cursor, err := cr.collection.Find(ctx, bson.M{"userId": userObjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts: %w", err)
	}
	defer cursor.Close(ctx)

	var contacts []models.EmergencyContact
	if err = cursor.All(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("failed to decode contacts: %w", err)
	}

	return contacts, nil
}

func (cr *ContactRepository) Update(ctx context.Context, contact *models.EmergencyContact) error {
	contact.UpdatedAt = time.Now()

	filter := bson.M{"_id": contact.ID}
	update := bson.M{"$set": bson.M{
		"name":         contact.Name,
		"phone":        contact.Phone,
		"relationship": contact.Relationship,
		"updatedAt":    contact.UpdatedAt,
	}}

	result, err := cr.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrContactNotFound
	}

	return nil
}

func (cr *ContactRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return utils.ErrContactNotFound
	}

	result, err := cr.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.ErrContactNotFound
	}

	return nil
}

// SetPrimary promotes one contact and demotes the prior primary. The
// demote runs first so there is never more than one primary visible;
// a failure between the two steps leaves the user with zero primaries,
// which the promotion retry fixes.
func (cr *ContactRepository) SetPrimary(ctx context.Context, userID, contactID string) error {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return utils.ErrContactNotFound
	}
	contactObjectID, err := primitive.ObjectIDFromHex(contactID)
	if err != nil {
		return utils.ErrContactNotFound
	}

	if err := cr.demoteAll(ctx, userObjectID); err != nil {
		return err
	}

	filter := bson.M{"_id": contactObjectID, "userId": userObjectID}
	update := bson.M{"$set": bson.M{"isPrimary": true, "updatedAt": time.Now()}}

	result, err := cr.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to promote contact: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrContactNotFound
	}

	return nil
}

func (cr *ContactRepository) demoteAll(ctx context.Context, userID primitive.ObjectID) error {
	filter := bson.M{"userId": userID, "isPrimary": true}
	update := bson.M{"$set": bson.M{"isPrimary": false, "updatedAt": time.Now()}}

	_, err := cr.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to demote primary contact: %w", err)
	}

	return nil
}
