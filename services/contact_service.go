package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrip/interfaces"
	"safetrip/models"
	"safetrip/utils"
)

// ContactService manages a user's emergency contacts and serves as the
// ContactDirectory consulted by the SOS fan-out. At most one contact per
// user is primary; promotion demotes the previous primary.
type ContactService struct {
	contactStore interfaces.ContactStore
	clock        utils.Clock
	validator    *utils.ValidationService
}

func NewContactService(contactStore interfaces.ContactStore, clock utils.Clock) *ContactService {
	return &ContactService{
		contactStore: contactStore,
		clock:        clock,
		validator:    utils.NewValidationService(),
	}
}

func (cs *ContactService) AddContact(ctx context.Context, userID string, req models.AddContactRequest) (*models.EmergencyContact, error) {
	if validationErrors := cs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewBadRequestError("Invalid contact data")
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewBadRequestError("Invalid user ID")
	}

	existing, err := cs.contactStore.GetUserContacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := cs.clock.Now()
	contact := &models.EmergencyContact{
		UserID:       userObjectID,
		Name:         req.Name,
		Phone:        utils.NormalizePhone(req.Phone),
		Relationship: req.Relationship,
		IsPrimary:    req.IsPrimary || len(existing) == 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := cs.contactStore.Create(ctx, contact); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userId":    userID,
		"contactId": contact.ID.Hex(),
		"primary":   contact.IsPrimary,
	}).Info("Emergency contact added")

	return contact, nil
}

func (cs *ContactService) UpdateContact(ctx context.Context, userID, contactID string, req models.UpdateContactRequest) (*models.EmergencyContact, error) {
	if validationErrors := cs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewBadRequestError("Invalid contact data")
	}

	contact, err := cs.ownedContact(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		contact.Name = req.Name
	}
	if req.Phone != "" {
		contact.Phone = utils.NormalizePhone(req.Phone)
	}
	if req.Relationship != "" {
		contact.Relationship = req.Relationship
	}
	contact.UpdatedAt = cs.clock.Now()

	if err := cs.contactStore.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// RemoveContact deletes a contact. Removing an id that does not exist is
// a no-op.
func (cs *ContactService) RemoveContact(ctx context.Context, userID, contactID string) error {
	contact, err := cs.ownedContact(ctx, userID, contactID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil
		}
		return err
	}

	if err := cs.contactStore.Delete(ctx, contactID); err != nil {
		if utils.IsNotFound(err) {
			return nil
		}
		return err
	}

	// Keep the primary invariant: if the removed contact was primary,
	// promote the oldest remaining contact.
	if contact.IsPrimary {
		remaining, err := cs.contactStore.GetUserContacts(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			// Contacts come back primary-first then oldest-first; with no
			// primary left, the head is the oldest contact.
			oldest := remaining[0]
			if err := cs.contactStore.SetPrimary(ctx, userID, oldest.ID.Hex()); err != nil {
				logrus.WithField("userId", userID).Warn("Failed to promote replacement primary: ", err)
			}
		}
	}

	return nil
}

// PromoteContact makes the given contact the user's primary, demoting
// whichever contact held the role before. Promoting the current primary
// is a no-op.
func (cs *ContactService) PromoteContact(ctx context.Context, userID, contactID string) (*models.EmergencyContact, error) {
	contact, err := cs.ownedContact(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if !contact.IsPrimary {
		if err := cs.contactStore.SetPrimary(ctx, userID, contactID); err != nil {
			return nil, err
		}
		contact.IsPrimary = true
	}

	return contact, nil
}

func (cs *ContactService) GetContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	return cs.contactStore.GetUserContacts(ctx, userID)
}

// PrimaryAndSecondaryContacts implements the directory consulted during
// SOS fan-out, primary first.
func (cs *ContactService) PrimaryAndSecondaryContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	contacts, err := cs.contactStore.GetUserContacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	ordered := make([]models.EmergencyContact, 0, len(contacts))
	for _, c := range contacts {
		if c.IsPrimary {
			ordered = append(ordered, c)
		}
	}
	for _, c := range contacts {
		if !c.IsPrimary {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (cs *ContactService) ownedContact(ctx context.Context, userID, contactID string) (*models.EmergencyContact, error) {
	contact, err := cs.contactStore.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.UserID.Hex() != userID {
		return nil, utils.NewForbiddenError("Access denied")
	}
	return contact, nil
}
