package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

type ClinicServicer interface {
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	ListClinics(ctx context.Context, p model.Pagination) ([]*model.Clinic, error)
	ListWindows(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error)
	CachedWindows(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error)
	AddWindow(ctx context.Context, clinicID uuid.UUID, req *model.CreateWindowRequest) (*model.OperatingWindow, error)
	RemoveWindow(ctx context.Context, clinicID, windowID uuid.UUID) error
}

type Service struct {
	clinics repository.ClinicRepository
	windows repository.OperatingWindowRepository
	cache   *cache.Cache
	logger  *logger.Logger
}

// NewService caches window lists for ttl. A ttl of zero disables caching.
func NewService(clinics repository.ClinicRepository, windows repository.OperatingWindowRepository, ttl time.Duration, log *logger.Logger) *Service {
	s := &Service{
		clinics: clinics,
		windows: windows,
		logger:  log.WithFields(map[string]interface{}{"service": "clinic"}),
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.clinics.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) ListClinics(ctx context.Context, p model.Pagination) ([]*model.Clinic, error) {
	clinics, err := s.clinics.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

// ListWindows always reads the store. Use it wherever a write is validated.
func (s *Service) ListWindows(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error) {
	windows, err := s.windows.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list operating windows: %w", err)
	}
	return windows, nil
}

// CachedWindows serves previews and may lag a concurrent edit by up to the ttl.
func (s *Service) CachedWindows(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error) {
	if s.cache == nil {
		return s.ListWindows(ctx, clinicID)
	}
	key := clinicID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.OperatingWindow), nil
	}

	windows, err := s.ListWindows(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, windows)
	return windows, nil
}

func (s *Service) invalidate(clinicID uuid.UUID) {
	if s.cache != nil {
		s.cache.Delete(clinicID.String())
	}
}

func (s *Service) AddWindow(ctx context.Context, clinicID uuid.UUID, req *model.CreateWindowRequest) (*model.OperatingWindow, error) {
	day, err := scheduling.ParseWeekday(req.OpenDay)
	if err != nil {
		return nil, err
	}
	start, err := scheduling.ParseTime(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := scheduling.ParseTime(req.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, fmt.Errorf("%w: window %s-%s", scheduling.ErrInvalidShiftRange, req.StartTime, req.EndTime)
	}

	if _, err := s.GetClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	window := &model.OperatingWindow{
		ClinicID:  clinicID,
		OpenDay:   day,
		StartTime: scheduling.FormatTime(start),
		EndTime:   scheduling.FormatTime(end),
	}
	if err := s.windows.Create(ctx, window); err != nil {
		return nil, fmt.Errorf("failed to create operating window: %w", err)
	}
	s.invalidate(clinicID)

	s.logger.Info("Operating window added",
		"clinic_id", clinicID.String(),
		"open_day", string(day),
		"start", window.StartTime,
		"end", window.EndTime)
	return window, nil
}

func (s *Service) RemoveWindow(ctx context.Context, clinicID, windowID uuid.UUID) error {
	window, err := s.windows.Get(ctx, windowID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("operating window", err)
		}
		return fmt.Errorf("failed to get operating window: %w", err)
	}
	if window.ClinicID != clinicID {
		return apperrors.NotFound("operating window", nil)
	}

	if err := s.windows.Delete(ctx, windowID); err != nil {
		return fmt.Errorf("failed to delete operating window: %w", err)
	}
	s.invalidate(clinicID)
	return nil
}
