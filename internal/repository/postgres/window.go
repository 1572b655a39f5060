package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

const windowColumns = `id, clinic_id, open_day, start_time, end_time, created_at, updated_at`

type operatingWindowRepository struct {
	BaseRepository
}

func NewOperatingWindowRepository(base BaseRepository) repository.OperatingWindowRepository {
	return &operatingWindowRepository{base}
}

func (r *operatingWindowRepository) Create(ctx context.Context, w *model.OperatingWindow) error {
	query := `
		INSERT INTO operating_windows (` + windowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.ClinicID, w.OpenDay, w.StartTime, w.EndTime, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operating window: %w", mapError(err))
	}
	return nil
}

func (r *operatingWindowRepository) Get(ctx context.Context, id uuid.UUID) (*model.OperatingWindow, error) {
	var w model.OperatingWindow
	err := r.db.GetContext(ctx, &w, `SELECT `+windowColumns+` FROM operating_windows WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get operating window: %w", mapError(err))
	}
	return &w, nil
}

func (r *operatingWindowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM operating_windows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete operating window: %w", err)
	}
	return checkAffected(res)
}

func (r *operatingWindowRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error) {
	var windows []*model.OperatingWindow
	err := r.db.SelectContext(ctx, &windows, `
		SELECT `+windowColumns+`
		FROM operating_windows
		WHERE clinic_id = $1
		ORDER BY open_day, start_time
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list operating windows: %w", err)
	}
	return windows, nil
}

func (r *operatingWindowRepository) ListByClinicDay(ctx context.Context, clinicID uuid.UUID, day scheduling.Weekday) ([]*model.OperatingWindow, error) {
	var windows []*model.OperatingWindow
	err := r.db.SelectContext(ctx, &windows, `
		SELECT `+windowColumns+`
		FROM operating_windows
		WHERE clinic_id = $1 AND open_day = $2
		ORDER BY start_time
	`, clinicID, string(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list operating windows: %w", err)
	}
	return windows, nil
}
