package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-api/internal/models"
)

type tallyRepoStub struct {
	tally models.AttendanceTally
	err   error
}

func (s tallyRepoStub) Tally(ctx context.Context, employeeID string) (*models.AttendanceTally, error) {
	if s.err != nil {
		return nil, s.err
	}
	t := s.tally
	return &t, nil
}

func TestRatingEmptyLedgerIsZero(t *testing.T) {
	svc := NewRatingService(tallyRepoStub{})
	result, err := svc.Rating(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Rating)
	assert.Equal(t, 0, result.Total)
}

func TestRatingFullPresenceIsTen(t *testing.T) {
	svc := NewRatingService(tallyRepoStub{tally: models.AttendanceTally{Present: 20, Total: 20}})
	result, err := svc.Rating(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Rating)
}

func TestRatingHalfPresenceIsFive(t *testing.T) {
	svc := NewRatingService(tallyRepoStub{tally: models.AttendanceTally{Present: 10, Total: 20}})
	result, err := svc.Rating(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.Rating)
}

func TestRatingRoundsToTwoDecimals(t *testing.T) {
	svc := NewRatingService(tallyRepoStub{tally: models.AttendanceTally{Present: 2, Total: 3}})
	result, err := svc.Rating(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 6.67, result.Rating)
	assert.Equal(t, 2, result.Present)
	assert.Equal(t, 3, result.Total)
}
