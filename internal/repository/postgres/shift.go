package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

const shiftColumns = `id, clinic_id, doctor_id, shift_date, start_shift, end_shift, created_at, updated_at`

type shiftRepository struct {
	BaseRepository
}

func NewShiftRepository(base BaseRepository) repository.ShiftRepository {
	return &shiftRepository{base}
}

func (r *shiftRepository) Schedule(ctx context.Context, shift *model.ScheduledShift, check repository.ShiftCheck) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	shift.CreatedAt = time.Now()
	shift.UpdatedAt = shift.CreatedAt

	err := r.WithSerializableTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.runCheck(ctx, tx, shift, check); err != nil {
			return err
		}
		start, end, err := shiftMinutes(shift)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO scheduled_shifts (
				id, clinic_id, doctor_id, shift_date, start_shift, end_shift,
				start_minute, end_minute, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			shift.ID, shift.ClinicID, shift.DoctorID, shift.Date,
			shift.StartShift, shift.EndShift, start, end,
			shift.CreatedAt, shift.UpdatedAt,
		)
		return err
	})
	return mapError(err)
}

func (r *shiftRepository) Reschedule(ctx context.Context, shift *model.ScheduledShift, check repository.ShiftCheck) error {
	shift.UpdatedAt = time.Now()

	err := r.WithSerializableTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.runCheck(ctx, tx, shift, check); err != nil {
			return err
		}
		start, end, err := shiftMinutes(shift)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE scheduled_shifts
			SET doctor_id = $1, shift_date = $2, start_shift = $3, end_shift = $4,
				start_minute = $5, end_minute = $6, updated_at = $7
			WHERE id = $8
		`,
			shift.DoctorID, shift.Date, shift.StartShift, shift.EndShift,
			start, end, shift.UpdatedAt, shift.ID,
		)
		if err != nil {
			return err
		}
		return checkAffected(res)
	})
	return mapError(err)
}

// runCheck reads the clinic's windows and the other shifts on the same date
// inside tx, so the check and the write see one snapshot.
func (r *shiftRepository) runCheck(ctx context.Context, tx *sqlx.Tx, shift *model.ScheduledShift, check repository.ShiftCheck) error {
	var windows []*model.OperatingWindow
	if err := tx.SelectContext(ctx, &windows, `
		SELECT `+windowColumns+`
		FROM operating_windows
		WHERE clinic_id = $1
	`, shift.ClinicID); err != nil {
		return fmt.Errorf("failed to load operating windows: %w", err)
	}

	var sameDay []*model.ScheduledShift
	if err := tx.SelectContext(ctx, &sameDay, `
		SELECT `+shiftColumns+`
		FROM scheduled_shifts
		WHERE clinic_id = $1 AND shift_date = $2 AND id <> $3
		ORDER BY start_minute
	`, shift.ClinicID, shift.Date, shift.ID); err != nil {
		return fmt.Errorf("failed to load shifts: %w", err)
	}

	if check == nil {
		return nil
	}
	return check(windows, sameDay)
}

func shiftMinutes(shift *model.ScheduledShift) (int, int, error) {
	start, err := scheduling.ParseTime(shift.StartShift)
	if err != nil {
		return 0, 0, err
	}
	end, err := scheduling.ParseTime(shift.EndShift)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (r *shiftRepository) Get(ctx context.Context, id uuid.UUID) (*model.ScheduledShift, error) {
	var shift model.ScheduledShift
	err := r.db.GetContext(ctx, &shift, `SELECT `+shiftColumns+` FROM scheduled_shifts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", mapError(err))
	}
	return &shift, nil
}

func (r *shiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return checkAffected(res)
}

func (r *shiftRepository) ListByClinicDate(ctx context.Context, clinicID uuid.UUID, date scheduling.Date) ([]*model.ScheduledShift, error) {
	var shifts []*model.ScheduledShift
	err := r.db.SelectContext(ctx, &shifts, `
		SELECT `+shiftColumns+`
		FROM scheduled_shifts
		WHERE clinic_id = $1 AND shift_date = $2
		ORDER BY start_minute
	`, clinicID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

func (r *shiftRepository) ListByClinicRange(ctx context.Context, clinicID uuid.UUID, from, to scheduling.Date) ([]*model.ScheduledShift, error) {
	var shifts []*model.ScheduledShift
	err := r.db.SelectContext(ctx, &shifts, `
		SELECT `+shiftColumns+`
		FROM scheduled_shifts
		WHERE clinic_id = $1 AND shift_date >= $2 AND shift_date < $3
		ORDER BY shift_date, start_minute
	`, clinicID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

func (r *shiftRepository) List(ctx context.Context, filters *model.ShiftFilters) ([]*model.ScheduledShift, error) {
	query := `SELECT ` + shiftColumns + ` FROM scheduled_shifts WHERE 1=1`
	var args []interface{}
	argCount := 1

	if filters.ClinicID != uuid.Nil {
		query += fmt.Sprintf(" AND clinic_id = $%d", argCount)
		args = append(args, filters.ClinicID)
		argCount++
	}
	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}
	if filters.From.Valid() {
		query += fmt.Sprintf(" AND shift_date >= $%d", argCount)
		args = append(args, filters.From)
		argCount++
	}
	if filters.To.Valid() {
		query += fmt.Sprintf(" AND shift_date <= $%d", argCount)
		args = append(args, filters.To)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY shift_date, start_minute LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit(), filters.Offset())

	var shifts []*model.ScheduledShift
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}
