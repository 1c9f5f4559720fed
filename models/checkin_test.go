package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOverdue(t *testing.T) {
	last := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// Interval 60 gives a 90-minute grace deadline.
	assert.False(t, IsOverdue(last, 60, last.Add(89*time.Minute)))
	assert.False(t, IsOverdue(last, 60, last.Add(90*time.Minute)), "deadline itself is not yet overdue")
	assert.True(t, IsOverdue(last, 60, last.Add(91*time.Minute)))
}

func TestIsOverdueDisabled(t *testing.T) {
	last := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsOverdue(last, 0, last.Add(24*time.Hour)))
	assert.False(t, IsOverdue(time.Time{}, 60, last))
}
