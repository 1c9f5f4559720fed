package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrip/models"
	"safetrip/utils"
)

type contactHarness struct {
	service *ContactService
	store   *fakeContactStore
	clock   *utils.FakeClock
	userID  string
}

func newContactHarness(start time.Time) *contactHarness {
	store := newFakeContactStore()
	clock := utils.NewFakeClock(start)
	return &contactHarness{
		service: NewContactService(store, clock),
		store:   store,
		clock:   clock,
		userID:  primitive.NewObjectID().Hex(),
	}
}

func (h *contactHarness) add(t *testing.T, name string, primary bool) *models.EmergencyContact {
	t.Helper()
	contact, err := h.service.AddContact(context.Background(), h.userID, models.AddContactRequest{
		Name:         name,
		Phone:        "+1 555 555 0100",
		Relationship: "friend",
		IsPrimary:    primary,
	})
	require.NoError(t, err)
	// Distinct creation times keep the ordering deterministic.
	h.clock.Advance(time.Minute)
	return contact
}

func primaryNames(t *testing.T, h *contactHarness) []string {
	t.Helper()
	contacts, err := h.service.GetContacts(context.Background(), h.userID)
	require.NoError(t, err)
	var names []string
	for _, c := range contacts {
		if c.IsPrimary {
			names = append(names, c.Name)
		}
	}
	return names
}

func TestFirstContactBecomesPrimary(t *testing.T) {
	h := newContactHarness(noon())

	first := h.add(t, "Alice", false)
	assert.True(t, first.IsPrimary)

	second := h.add(t, "Bob", false)
	assert.False(t, second.IsPrimary)

	assert.Equal(t, []string{"Alice"}, primaryNames(t, h))
}

func TestAddPrimaryDemotesPrevious(t *testing.T) {
	h := newContactHarness(noon())

	h.add(t, "Alice", false)
	h.add(t, "Bob", true)

	assert.Equal(t, []string{"Bob"}, primaryNames(t, h))
}

func TestAddContactNormalizesPhone(t *testing.T) {
	h := newContactHarness(noon())

	contact := h.add(t, "Alice", false)
	assert.Equal(t, "+15555550100", contact.Phone)
}

func TestAddContactRejectsBadPhone(t *testing.T) {
	h := newContactHarness(noon())

	_, err := h.service.AddContact(context.Background(), h.userID, models.AddContactRequest{
		Name:         "Alice",
		Phone:        "not-a-number",
		Relationship: "friend",
	})
	require.Error(t, err)
}

func TestPromoteDemotesExactlyOne(t *testing.T) {
	h := newContactHarness(noon())

	h.add(t, "Alice", false)
	bob := h.add(t, "Bob", false)
	h.add(t, "Carol", false)

	promoted, err := h.service.PromoteContact(context.Background(), h.userID, bob.ID.Hex())
	require.NoError(t, err)
	assert.True(t, promoted.IsPrimary)
	assert.Equal(t, []string{"Bob"}, primaryNames(t, h))
}

func TestPromoteCurrentPrimaryIsNoOp(t *testing.T) {
	h := newContactHarness(noon())

	alice := h.add(t, "Alice", false)
	promoted, err := h.service.PromoteContact(context.Background(), h.userID, alice.ID.Hex())
	require.NoError(t, err)
	assert.True(t, promoted.IsPrimary)
	assert.Equal(t, []string{"Alice"}, primaryNames(t, h))
}

func TestRemovePrimaryPromotesOldestRemaining(t *testing.T) {
	h := newContactHarness(noon())

	alice := h.add(t, "Alice", false) // primary by virtue of being first
	h.add(t, "Bob", false)
	h.add(t, "Carol", false)

	require.NoError(t, h.service.RemoveContact(context.Background(), h.userID, alice.ID.Hex()))
	assert.Equal(t, []string{"Bob"}, primaryNames(t, h))
}

func TestRemoveUnknownContactIsNoOp(t *testing.T) {
	h := newContactHarness(noon())

	err := h.service.RemoveContact(context.Background(), h.userID, primitive.NewObjectID().Hex())
	assert.NoError(t, err)
}

func TestRemoveForeignContactDenied(t *testing.T) {
	h := newContactHarness(noon())

	alice := h.add(t, "Alice", false)
	otherUser := primitive.NewObjectID().Hex()

	err := h.service.RemoveContact(context.Background(), otherUser, alice.ID.Hex())
	require.Error(t, err)

	contacts, err := h.service.GetContacts(context.Background(), h.userID)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

func TestUpdateContactMergesProvidedFields(t *testing.T) {
	h := newContactHarness(noon())

	alice := h.add(t, "Alice", false)
	updated, err := h.service.UpdateContact(context.Background(), h.userID, alice.ID.Hex(), models.UpdateContactRequest{
		Relationship: "sister",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "sister", updated.Relationship)
}

func TestPrimaryAndSecondaryContactsOrdersPrimaryFirst(t *testing.T) {
	h := newContactHarness(noon())

	h.add(t, "Alice", false)
	h.add(t, "Bob", false)
	h.add(t, "Carol", true)

	ordered, err := h.service.PrimaryAndSecondaryContacts(context.Background(), h.userID)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, "Carol", ordered[0].Name)
	assert.True(t, ordered[0].IsPrimary)
	assert.False(t, ordered[1].IsPrimary)
	assert.False(t, ordered[2].IsPrimary)
}
