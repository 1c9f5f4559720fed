package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/utils"
)

const (
	deviceTokenKeyPrefix = "push:devices:"
	deviceTokenTTL       = 90 * 24 * time.Hour
)

// PushService keeps the per-user device token registry in redis and
// delivers admitted notifications through FCM. Tokens expire unless the
// device re-registers.
type PushService struct {
	redisClient *redis.Client
	gateway     *utils.MessagingGateway
}

func NewPushService(redisClient *redis.Client, gateway *utils.MessagingGateway) *PushService {
	return &PushService{
		redisClient: redisClient,
		gateway:     gateway,
	}
}

func (ps *PushService) RegisterDevice(ctx context.Context, userID, deviceToken string) error {
	if deviceToken == "" {
		return utils.NewBadRequestError("Device token is required")
	}

	key := deviceTokenKeyPrefix + userID
	if err := ps.redisClient.SAdd(ctx, key, deviceToken).Err(); err != nil {
		return utils.NewDatabaseError("register device", err)
	}
	return ps.redisClient.Expire(ctx, key, deviceTokenTTL).Err()
}

func (ps *PushService) UnregisterDevice(ctx context.Context, userID, deviceToken string) error {
	key := deviceTokenKeyPrefix + userID
	return ps.redisClient.SRem(ctx, key, deviceToken).Err()
}

// DeliverPush sends the notification to every registered device. A user
// with no registered devices is not an error. Tokens FCM reports as
// invalid are pruned from the registry.
func (ps *PushService) DeliverPush(ctx context.Context, userID string, notification models.Notification) error {
	key := deviceTokenKeyPrefix + userID
	tokens, err := ps.redisClient.SMembers(ctx, key).Result()
	if err != nil {
		return utils.NewDatabaseError("load device tokens", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	push := utils.PushNotification{
		Title: notification.Title,
		Body:  notification.Message,
		Data: map[string]string{
			"category": notification.Category,
			"priority": notification.Priority,
		},
		Sound: "default",
	}
	if notification.ActionRef != "" {
		push.Data["actionRef"] = notification.ActionRef
	}

	var failed int
	for _, token := range tokens {
		if _, err := ps.gateway.SendPushNotification(ctx, token, push); err != nil {
			failed++
			logrus.WithField("userId", userID).Debug("Push to device failed, pruning token: ", err)
			ps.redisClient.SRem(ctx, key, token)
		}
	}

	if failed == len(tokens) {
		return fmt.Errorf("push delivery failed for all %d devices", failed)
	}
	return nil
}
