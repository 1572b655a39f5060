package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-scheduler/internal/repository"
)

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion violation", &pq.Error{Code: "23P01"}, repository.ErrConflict},
		{"unique violation", &pq.Error{Code: "23505"}, repository.ErrConflict},
		{"serialization failure", &pq.Error{Code: "40001"}, repository.ErrConflict},
		{"wrapped exclusion violation", fmt.Errorf("insert shift: %w", &pq.Error{Code: "23P01"}), repository.ErrConflict},
		{"no rows", sql.ErrNoRows, repository.ErrNotFound},
		{"foreign key violation passes through", &pq.Error{Code: "23503"}, nil},
		{"other error passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.want == nil {
				assert.Same(t, tt.err, got)
				assert.NotErrorIs(t, got, repository.ErrConflict)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	assert.NoError(t, mapError(nil))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(&pq.Error{Code: "23P01"}))
	assert.True(t, IsConflict(&pq.Error{Code: "40001"}))
	assert.False(t, IsConflict(&pq.Error{Code: "23503"}))
	assert.False(t, IsConflict(errors.New("23P01")))
	assert.False(t, IsConflict(nil))
}

func TestCheckAffected(t *testing.T) {
	assert.NoError(t, checkAffected(fakeResult{rows: 1}))
	assert.ErrorIs(t, checkAffected(fakeResult{rows: 0}), repository.ErrNotFound)
	assert.ErrorContains(t, checkAffected(fakeResult{err: errors.New("driver")}), "rows affected")
}
