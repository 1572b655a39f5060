package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/email"
	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/messaging"
)

const (
	maxRetries = 3
	retryDelay = 5 * time.Second

	inAppChannel = "notifications"
)

type Service interface {
	Send(ctx context.Context, notification *model.Notification) error
}

// Retrier redelivers notifications whose earlier delivery failed.
type Retrier interface {
	RetryDue(ctx context.Context, limit int) (int, error)
}

type service struct {
	repo     repository.NotificationRepository
	emailSvc email.Service
	broker   messaging.Broker
	logger   *logger.Logger
	now      func() time.Time
	dispatch func(func())
}

type Option func(*service)

// WithSynchronousDelivery delivers inside Send instead of on a goroutine.
func WithSynchronousDelivery() Option {
	return func(s *service) { s.dispatch = func(f func()) { f() } }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(repo repository.NotificationRepository, emailSvc email.Service, broker messaging.Broker, log *logger.Logger, opts ...Option) Service {
	return newService(repo, emailSvc, broker, log, opts...)
}

// NewRetrier shares delivery with NewService; the worker runs it.
func NewRetrier(repo repository.NotificationRepository, emailSvc email.Service, broker messaging.Broker, log *logger.Logger, opts ...Option) Retrier {
	return newService(repo, emailSvc, broker, log, opts...)
}

func newService(repo repository.NotificationRepository, emailSvc email.Service, broker messaging.Broker, log *logger.Logger, opts ...Option) *service {
	s := &service{
		repo:     repo,
		emailSvc: emailSvc,
		broker:   broker,
		logger:   log.WithFields(map[string]interface{}{"service": "notification"}),
		now:      time.Now,
		dispatch: func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send persists the notification and delivers it in the background. Delivery
// errors are recorded on the notification, not returned.
func (s *service) Send(ctx context.Context, notification *model.Notification) error {
	if err := s.validateNotification(notification); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	now := s.now()
	notification.ID = uuid.New()
	notification.CreatedAt = now
	notification.UpdatedAt = now
	notification.Status = model.NotificationStatusPending

	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	// the request context ends with the response
	bg := context.WithoutCancel(ctx)
	n := *notification
	s.dispatch(func() { s.processNotification(bg, &n) })

	return nil
}

// RetryDue claims notifications whose retry time has passed and delivers
// them again. Each failure counts toward maxRetries.
func (s *service) RetryDue(ctx context.Context, limit int) (int, error) {
	due, err := s.repo.ClaimDueRetries(ctx, s.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to claim due notifications: %w", err)
	}
	for _, n := range due {
		s.processNotification(ctx, n)
	}
	return len(due), nil
}

func (s *service) processNotification(ctx context.Context, notification *model.Notification) {
	var err error
	switch notification.Channel {
	case model.NotificationChannelEmail:
		err = s.emailSvc.Send(ctx, notification.Recipient, notification.Subject, notification.Content)
	case model.NotificationChannelInApp:
		err = s.sendInApp(ctx, notification)
	default:
		err = fmt.Errorf("unsupported channel: %s", notification.Channel)
	}

	if err != nil {
		s.handleError(ctx, notification, err)
		return
	}

	sentAt := s.now()
	notification.Status = model.NotificationStatusSent
	notification.SentAt = &sentAt
	notification.UpdatedAt = sentAt

	if err := s.repo.Update(ctx, notification); err != nil {
		s.logger.Error(err, "Failed to mark notification sent",
			"notification_id", notification.ID.String())
		return
	}

	s.logger.Debug("Notification sent",
		"notification_id", notification.ID.String(),
		"channel", notification.Channel)
}

func (s *service) sendInApp(ctx context.Context, notification *model.Notification) error {
	event := &model.NotificationEvent{
		ID:             uuid.New(),
		NotificationID: notification.ID,
		RecipientID:    notification.RecipientID,
		Type:           "in_app_notification",
		Content:        notification.Content,
		CreatedAt:      s.now(),
	}

	return s.broker.Publish(ctx, inAppChannel, event)
}

func (s *service) handleError(ctx context.Context, notification *model.Notification, err error) {
	now := s.now()
	notification.RetryCount++
	notification.LastError = err.Error()
	notification.UpdatedAt = now

	if notification.RetryCount >= maxRetries {
		notification.Status = model.NotificationStatusFailed
		notification.NextRetryAt = nil
	} else {
		next := now.Add(retryDelay * time.Duration(notification.RetryCount))
		notification.Status = model.NotificationStatusRetrying
		notification.NextRetryAt = &next
	}

	if updateErr := s.repo.Update(ctx, notification); updateErr != nil {
		s.logger.Error(updateErr, "Failed to record notification failure",
			"notification_id", notification.ID.String())
		return
	}

	s.logger.Warn("Notification delivery failed",
		"notification_id", notification.ID.String(),
		"channel", notification.Channel,
		"retry_count", notification.RetryCount,
		"error", err.Error())
}

func (s *service) validateNotification(notification *model.Notification) error {
	if notification.RecipientID == uuid.Nil {
		return fmt.Errorf("recipient ID is required")
	}

	if notification.ClinicID == uuid.Nil {
		return fmt.Errorf("clinic ID is required")
	}

	if notification.Channel == "" {
		return fmt.Errorf("channel is required")
	}

	if notification.Channel == model.NotificationChannelEmail && notification.Recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	if notification.Content == "" {
		return fmt.Errorf("content is required")
	}

	return nil
}
