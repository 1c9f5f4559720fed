package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCategoryEnabledDefaultsMissingToTrue(t *testing.T) {
	settings := &NotificationSettings{Categories: map[string]bool{CategoryMarketing: false}}

	assert.False(t, settings.CategoryEnabled(CategoryMarketing))
	assert.True(t, settings.CategoryEnabled(CategorySafety))

	settings.Categories = nil
	assert.True(t, settings.CategoryEnabled(CategoryMarketing))
}

func TestDefaultNotificationSettingsEnableEveryCategory(t *testing.T) {
	settings := DefaultNotificationSettings(primitive.NewObjectID())

	for _, category := range NotificationCategories {
		assert.True(t, settings.CategoryEnabled(category), category)
	}
	assert.True(t, settings.PushEnabled)
	assert.True(t, settings.SoundEnabled)
	assert.False(t, settings.QuietHours.Enabled)
}
