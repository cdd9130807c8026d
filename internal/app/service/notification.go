package service

import (
	"context"
	"encoding/json"
	"time"

	"engagement_hub/internal/domain/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Clock supplies the current time so follow-up scheduling and inactivity
// detection stay deterministic under test.
type Clock func() time.Time

// NotificationEmitter is the boundary to the delivery collaborator.
// Emission is fire-and-forget: failures are logged and never roll back the
// state transition that triggered them.
type NotificationEmitter interface {
	Emit(kind, recipientID string, payload map[string]string)
}

type RedisNotificationEmitter struct {
	rdb       *redis.Client
	queueName string
	now       Clock
}

func NewRedisNotificationEmitter(rdb *redis.Client, queueName string, now Clock) *RedisNotificationEmitter {
	if now == nil {
		now = time.Now
	}
	return &RedisNotificationEmitter{rdb: rdb, queueName: queueName, now: now}
}

func (e *RedisNotificationEmitter) Emit(kind, recipientID string, payload map[string]string) {
	n := model.Notification{
		ID:          uuid.NewString(),
		Kind:        kind,
		RecipientID: recipientID,
		Payload:     payload,
		CreatedAt:   e.now(),
	}
	body, err := json.Marshal(n)
	if err != nil {
		zap.S().Errorw("failed to marshal notification", "kind", kind, "recipient", recipientID, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.rdb.LPush(ctx, e.queueName, body).Err(); err != nil {
		zap.S().Errorw("failed to push notification to queue", "queue", e.queueName, "kind", kind, "err", err)
	}
}

// NoopEmitter drops everything; used when no delivery collaborator is wired.
type NoopEmitter struct{}

func (NoopEmitter) Emit(kind, recipientID string, payload map[string]string) {}
