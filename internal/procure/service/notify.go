package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is the user-visible workflow notification emitted after a commit.
// Delivery (email, chat) is a downstream concern of whoever subscribes.
type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	TrackingID string    `json:"tracking_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier receives workflow events. Implementations must not fail the
// calling operation; the state change has already been committed.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// RedisNotifier publishes events to a redis channel for out-of-process
// consumers. Publish errors are logged and dropped.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	if channel == "" {
		channel = "satinalma:events"
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

func (n *RedisNotifier) Notify(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("marshal event", zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.logger.Error("publish event",
			zap.String("type", event.Type),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}

// LogNotifier writes events to the structured log. Used when redis is not
// configured, and in tests.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) {
	n.logger.Info("workflow event",
		zap.String("type", event.Type),
		zap.String("entity_id", event.EntityID),
		zap.String("tracking_id", event.TrackingID),
		zap.Time("timestamp", event.Timestamp))
}
