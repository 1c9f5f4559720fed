package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrip/models"
	"safetrip/utils"
)

// In-memory fakes for the persistence and collaborator ports.

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{}
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = primitive.NewObjectID()
	stored := *n
	f.notifications = append(f.notifications, &stored)
	return nil
}

func (f *fakeNotificationStore) GetByID(_ context.Context, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID.Hex() == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("Notification")
}

func (f *fakeNotificationStore) GetUserNotifications(_ context.Context, req models.GetNotificationsRequest) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []models.Notification
	for _, n := range f.notifications {
		if n.UserID.Hex() != req.UserID {
			continue
		}
		if req.Category != "" && n.Category != req.Category {
			continue
		}
		if req.Unread && n.IsRead {
			continue
		}
		matched = append(matched, *n)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (req.Page - 1) * req.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + req.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeNotificationStore) GetByCategory(ctx context.Context, userID, category string) ([]models.Notification, error) {
	out, _, err := f.GetUserNotifications(ctx, models.GetNotificationsRequest{
		UserID:   userID,
		Page:     1,
		PageSize: 1000,
		Category: category,
	})
	return out, err
}

func (f *fakeNotificationStore) MarkAsRead(_ context.Context, id string) error {
	return f.setRead(id, true)
}

func (f *fakeNotificationStore) MarkAsUnread(_ context.Context, id string) error {
	return f.setRead(id, false)
}

func (f *fakeNotificationStore) setRead(id string, read bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID.Hex() == id {
			n.IsRead = read
			if read {
				n.ReadAt = time.Now()
			} else {
				n.ReadAt = time.Time{}
			}
			return nil
		}
	}
	return utils.NewNotFoundError("Notification")
}

func (f *fakeNotificationStore) MarkAllAsRead(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.UserID.Hex() == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notifications {
		if n.ID.Hex() == id {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return utils.NewNotFoundError("Notification")
}

func (f *fakeNotificationStore) DeleteAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*models.Notification
	for _, n := range f.notifications {
		if n.UserID.Hex() != userID {
			kept = append(kept, n)
		}
	}
	f.notifications = kept
	return nil
}

func (f *fakeNotificationStore) UnreadCount(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID.Hex() == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -days)
	var kept []*models.Notification
	var deleted int64
	for _, n := range f.notifications {
		if n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return deleted, nil
}

func (f *fakeNotificationStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notifications)
}

func (f *fakeNotificationStore) all() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, 0, len(f.notifications))
	for _, n := range f.notifications {
		out = append(out, *n)
	}
	return out
}

type fakeSettingsStore struct {
	mu           sync.Mutex
	safety       map[string]*models.SafetySettings
	notification map[string]*models.NotificationSettings
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{
		safety:       make(map[string]*models.SafetySettings),
		notification: make(map[string]*models.NotificationSettings),
	}
}

func (f *fakeSettingsStore) GetSafetySettings(_ context.Context, userID string) (*models.SafetySettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.safety[userID]; ok {
		copied := *s
		return &copied, nil
	}
	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	return models.DefaultSafetySettings(userObjectID), nil
}

func (f *fakeSettingsStore) SaveSafetySettings(_ context.Context, settings *models.SafetySettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *settings
	f.safety[settings.UserID.Hex()] = &copied
	return nil
}

func (f *fakeSettingsStore) GetNotificationSettings(_ context.Context, userID string) (*models.NotificationSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.notification[userID]; ok {
		copied := *s
		return &copied, nil
	}
	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	return models.DefaultNotificationSettings(userObjectID), nil
}

func (f *fakeSettingsStore) SaveNotificationSettings(_ context.Context, settings *models.NotificationSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *settings
	f.notification[settings.UserID.Hex()] = &copied
	return nil
}

func (f *fakeSettingsStore) ListAutoCheckInUsers(_ context.Context) ([]models.SafetySettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SafetySettings
	for _, s := range f.safety {
		if s.AutoCheckInIntervalMinutes > 0 {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeCheckInStore struct {
	mu       sync.Mutex
	checkIns []*models.CheckIn
}

func newFakeCheckInStore() *fakeCheckInStore {
	return &fakeCheckInStore{}
}

func (f *fakeCheckInStore) Create(_ context.Context, checkIn *models.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	checkIn.ID = primitive.NewObjectID()
	stored := *checkIn
	f.checkIns = append(f.checkIns, &stored)
	return nil
}

func (f *fakeCheckInStore) GetLatest(_ context.Context, userID string) (*models.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.CheckIn
	for _, c := range f.checkIns {
		if c.UserID.Hex() != userID {
			continue
		}
		if latest == nil || c.Timestamp.After(latest.Timestamp) {
			latest = c
		}
	}
	if latest == nil {
		return nil, utils.NewNotFoundError("Check-in")
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeCheckInStore) GetUserCheckIns(_ context.Context, userID string, limit int) ([]models.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CheckIn
	for _, c := range f.checkIns {
		if c.UserID.Hex() == userID {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSOSStore struct {
	mu     sync.Mutex
	alerts []*models.SOSAlert
}

func newFakeSOSStore() *fakeSOSStore {
	return &fakeSOSStore{}
}

func (f *fakeSOSStore) Create(_ context.Context, alert *models.SOSAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert.ID = primitive.NewObjectID()
	stored := *alert
	f.alerts = append(f.alerts, &stored)
	return nil
}

func (f *fakeSOSStore) GetByID(_ context.Context, id string) (*models.SOSAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID.Hex() == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, utils.ErrAlertNotFound
}

func (f *fakeSOSStore) GetActiveByUser(_ context.Context, userID string) (*models.SOSAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.UserID.Hex() == userID && a.Status == models.SOSStatusActive {
			copied := *a
			return &copied, nil
		}
	}
	return nil, utils.ErrAlertNotFound
}

func (f *fakeSOSStore) UpdateStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID.Hex() == id {
			a.Status = status
			a.UpdatedAt = time.Now()
			if status == models.SOSStatusResolved || status == models.SOSStatusFalseAlarm {
				now := time.Now()
				a.ResolvedAt = &now
			}
			return nil
		}
	}
	return utils.ErrAlertNotFound
}

func (f *fakeSOSStore) GetUserAlerts(_ context.Context, userID string, limit int) ([]models.SOSAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SOSAlert
	for _, a := range f.alerts {
		if a.UserID.Hex() == userID {
			out = append(out, *a)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSOSStore) activeCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.alerts {
		if a.UserID.Hex() == userID && a.Status == models.SOSStatusActive {
			count++
		}
	}
	return count
}

type fakeContactStore struct {
	mu       sync.Mutex
	contacts []*models.EmergencyContact
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{}
}

func (f *fakeContactStore) Create(_ context.Context, contact *models.EmergencyContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if contact.IsPrimary {
		for _, c := range f.contacts {
			if c.UserID == contact.UserID {
				c.IsPrimary = false
			}
		}
	}
	contact.ID = primitive.NewObjectID()
	stored := *contact
	f.contacts = append(f.contacts, &stored)
	return nil
}

func (f *fakeContactStore) GetByID(_ context.Context, id string) (*models.EmergencyContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.ID.Hex() == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, utils.ErrContactNotFound
}

func (f *fakeContactStore) GetUserContacts(_ context.Context, userID string) ([]models.EmergencyContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EmergencyContact
	for _, c := range f.contacts {
		if c.UserID.Hex() == userID {
			out = append(out, *c)
		}
	}
	// Primary first then oldest first, matching the repository sort.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeContactStore) Update(_ context.Context, contact *models.EmergencyContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.contacts {
		if c.ID == contact.ID {
			stored := *contact
			f.contacts[i] = &stored
			return nil
		}
	}
	return utils.ErrContactNotFound
}

func (f *fakeContactStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.contacts {
		if c.ID.Hex() == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return utils.ErrContactNotFound
}

func (f *fakeContactStore) SetPrimary(_ context.Context, userID, contactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var target *models.EmergencyContact
	for _, c := range f.contacts {
		if c.ID.Hex() == contactID && c.UserID.Hex() == userID {
			target = c
			break
		}
	}
	if target == nil {
		return utils.ErrContactNotFound
	}
	for _, c := range f.contacts {
		if c.UserID.Hex() == userID {
			c.IsPrimary = false
		}
	}
	target.IsPrimary = true
	return nil
}

type fakeLocationProvider struct {
	mu       sync.Mutex
	snapshot *models.LocationSnapshot
	err      error
}

func (f *fakeLocationProvider) CurrentLocation(_ context.Context, _ string) (*models.LocationSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.snapshot
	return &copied, nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	requests []models.AlertDispatchRequest
}

func (f *fakeDispatcher) Dispatch(_ context.Context, req models.AlertDispatchRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakePushDeliverer struct {
	mu     sync.Mutex
	pushes []models.Notification
}

func (f *fakePushDeliverer) DeliverPush(_ context.Context, _ string, notification models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, notification)
	return nil
}

func (f *fakePushDeliverer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

type fakePresenter struct {
	mu        sync.Mutex
	delivered []models.Notification
	cues      []string
}

func (f *fakePresenter) NotificationDelivered(_ string, notification models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, notification)
}

func (f *fakePresenter) SoundCue(_ string, category string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cues = append(f.cues, category)
}

func (f *fakePresenter) deliveredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

func (f *fakePresenter) cueCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cues)
}
