package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/utils"
)

// LocationService is the production LocationProvider. The device reports
// fixes through the HTTP layer; the last fix per user is cached in Redis
// with a staleness bound, and anything past the bound counts as
// unavailable.
type LocationService struct {
	redis    *redis.Client
	clock    utils.Clock
	maxAge   time.Duration
	validate *utils.ValidationService
}

const locationKeyPrefix = "location:last:"

func NewLocationService(redisClient *redis.Client, clock utils.Clock) *LocationService {
	return &LocationService{
		redis:    redisClient,
		clock:    clock,
		maxAge:   15 * time.Minute,
		validate: utils.NewValidationService(),
	}
}

// UpdateLocation records the device's current fix.
func (ls *LocationService) UpdateLocation(ctx context.Context, userID string, req models.UpdateLocationRequest) (*models.LocationSnapshot, error) {
	if validationErrors := ls.validate.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewBadRequestError("Invalid location")
	}

	snapshot := &models.LocationSnapshot{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Timestamp: ls.clock.Now(),
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode location: %w", err)
	}

	key := locationKeyPrefix + userID
	if err := ls.redis.Set(ctx, key, data, ls.maxAge).Err(); err != nil {
		return nil, utils.NewDatabaseError("cache location", err)
	}

	logrus.WithField("userId", userID).Debug("Location updated")
	return snapshot, nil
}

// CurrentLocation implements interfaces.LocationProvider. A missing or
// stale fix is a precondition failure for the callers, not an internal
// error.
func (ls *LocationService) CurrentLocation(ctx context.Context, userID string) (*models.LocationSnapshot, error) {
	key := locationKeyPrefix + userID

	data, err := ls.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, utils.ErrLocationUnavailable
		}
		return nil, utils.NewDatabaseError("read location", err)
	}

	var snapshot models.LocationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, utils.ErrLocationUnavailable
	}

	if ls.clock.Now().Sub(snapshot.Timestamp) > ls.maxAge {
		return nil, utils.ErrLocationUnavailable
	}

	return &snapshot, nil
}
