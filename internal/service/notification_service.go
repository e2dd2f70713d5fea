package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Publisher delivers realtime hints for stored notifications.
type Publisher interface {
	PublishCreated(ctx context.Context, notes []models.Notification) error
}

type NotificationService struct {
	notifRepo  repository.NotificationRepository
	followRepo repository.FollowRepository
	publisher  Publisher
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	followRepo repository.FollowRepository,
	publisher Publisher,
) *NotificationService {
	return &NotificationService{notifRepo: notifRepo, followRepo: followRepo, publisher: publisher}
}

// FanOut writes one unread notification per current follower of actorID,
// all referencing refID. Errors are logged and counted, never returned.
func (s *NotificationService) FanOut(ctx context.Context, actorID uint, kind models.NotificationType, refID uint) {
	span, ctx := observability.NewSpan(ctx, "notifications.fan_out",
		attribute.String("notification.type", string(kind)),
		attribute.Int64("notification.actor_id", int64(actorID)),
	)
	defer span.End()

	recipients, err := s.followRepo.FollowerIDs(ctx, actorID)
	if err != nil {
		s.fanOutFailed(ctx, span, kind, actorID, 0, err)
		return
	}
	if len(recipients) == 0 {
		return
	}

	notes := make([]models.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		note := models.Notification{
			RecipientID: recipientID,
			SenderID:    actorID,
			Type:        kind,
		}
		ref := refID
		switch kind {
		case models.NotificationPost, models.NotificationLike:
			note.PostID = &ref
		case models.NotificationComment:
			note.CommentID = &ref
		case models.NotificationFollow:
			note.FollowID = &ref
		}
		if err := note.Validate(); err != nil {
			s.fanOutFailed(ctx, span, kind, actorID, len(recipients), err)
			return
		}
		notes = append(notes, note)
	}

	if err := s.notifRepo.CreateBatch(ctx, notes); err != nil {
		s.fanOutFailed(ctx, span, kind, actorID, len(recipients), err)
		return
	}
	span.AddAttributes(attribute.Int("notification.recipients", len(notes)))
	observability.NotificationsCreated.WithLabelValues(string(kind)).Add(float64(len(notes)))
	observability.LogFanOut(ctx, string(kind), actorID, len(notes), nil)

	if s.publisher != nil {
		if err := s.publisher.PublishCreated(ctx, notes); err != nil {
			observability.RedisErrorRate.WithLabelValues("publish").Inc()
			observability.GlobalLogger.WarnContext(ctx, "notification hint not delivered", "error", err.Error())
		}
	}
}

func (s *NotificationService) fanOutFailed(ctx context.Context, span *observability.Span, kind models.NotificationType, actorID uint, recipients int, err error) {
	span.SetError(err)
	observability.FanOutFailures.WithLabelValues(string(kind)).Inc()
	observability.LogFanOut(ctx, string(kind), actorID, recipients, err)
}

// List returns the principal's own notifications. With onlyFollowing set it
// keeps those whose sender the principal follows.
func (s *NotificationService) List(ctx context.Context, principal uint, onlyFollowing bool, page models.PageRequest) (models.Result[models.Notification], error) {
	if err := requirePrincipal(principal); err != nil {
		return models.Result[models.Notification]{}, err
	}
	notes, total, err := s.notifRepo.ListForRecipient(ctx, principal, onlyFollowing, page)
	if err != nil {
		return models.Result[models.Notification]{}, err
	}
	return result(notes, total, page), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, principal, id uint) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	return s.notifRepo.MarkRead(ctx, principal, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, principal uint) (int64, error) {
	if err := requirePrincipal(principal); err != nil {
		return 0, err
	}
	return s.notifRepo.MarkAllRead(ctx, principal)
}

func (s *NotificationService) UnreadCount(ctx context.Context, principal uint) (int64, error) {
	if err := requirePrincipal(principal); err != nil {
		return 0, err
	}
	return s.notifRepo.UnreadCount(ctx, principal)
}
