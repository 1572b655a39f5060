package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, clinic_id, channel, subject, content, recipient,
			status, retry_count, last_error, next_retry_at, sent_at, created_at, updated_at
		) VALUES (
			:id, :recipient_id, :clinic_id, :channel, :subject, :content, :recipient,
			:status, :retry_count, :last_error, :next_retry_at, :sent_at, :created_at, :updated_at
		)
	`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	query := `
		UPDATE notifications
		SET status = :status, retry_count = :retry_count, last_error = :last_error,
			next_retry_at = :next_retry_at, sent_at = :sent_at, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, n)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return checkAffected(res)
}

func (r *notificationRepository) ClaimDueRetries(ctx context.Context, now time.Time, limit int) ([]*model.Notification, error) {
	query := `
		UPDATE notifications
		SET status = $1, next_retry_at = NULL, updated_at = $2
		WHERE id IN (
			SELECT id FROM notifications
			WHERE status = $3 AND next_retry_at <= $2
			ORDER BY next_retry_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *
	`
	var claimed []*model.Notification
	err := r.db.SelectContext(ctx, &claimed, query,
		model.NotificationStatusPending, now, model.NotificationStatusRetrying, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim notification retries: %w", err)
	}
	return claimed, nil
}
