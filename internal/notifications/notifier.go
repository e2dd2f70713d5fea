// Package notifications publishes realtime hints for newly written notifications.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"agora/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventCreated is the event name carried by every hint.
const EventCreated = "notification.created"

// Hint is the payload published to a recipient's channel. Clients fetch the
// full notification through the API.
type Hint struct {
	Event          string                  `json:"event"`
	NotificationID uint                    `json:"notification_id"`
	Type           models.NotificationType `json:"type"`
	SenderID       uint                    `json:"sender_id"`
	CreatedAt      time.Time               `json:"created_at"`
}

// Notifier provides helpers to publish notifications into Redis channels.
// A nil client turns every publish into a no-op.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishCreated sends one hint per notification to its recipient. It keeps
// going after a failed publish and returns the joined errors.
func (n *Notifier) PublishCreated(ctx context.Context, notes []models.Notification) error {
	if n == nil || n.rdb == nil {
		return nil
	}

	var errs []error
	for i := range notes {
		note := &notes[i]
		payload, err := json.Marshal(Hint{
			Event:          EventCreated,
			NotificationID: note.ID,
			Type:           note.Type,
			SenderID:       note.SenderID,
			CreatedAt:      note.CreatedAt,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("marshal hint: %w", err))
			continue
		}
		if err := n.PublishUser(ctx, note.RecipientID, string(payload)); err != nil {
			errs = append(errs, fmt.Errorf("publish to user %d: %w", note.RecipientID, err))
		}
	}
	return errors.Join(errs...)
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
