package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, location, email, status, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", mapError(err))
	}
	return &clinic, nil
}

func (r *clinicRepository) List(ctx context.Context, p model.Pagination) ([]*model.Clinic, error) {
	query := `
		SELECT id, name, location, email, status, created_at, updated_at
		FROM clinics
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	var clinics []*model.Clinic
	if err := r.db.SelectContext(ctx, &clinics, query, p.Limit(), p.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}
