package service

import (
	"context"
	"math"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type attendanceTallyRepository interface {
	Tally(ctx context.Context, employeeID string) (*models.AttendanceTally, error)
}

// RatingService derives a presence score from the attendance ledger. The
// score is a pure function of the ledger and is recomputed on every read.
type RatingService struct {
	repo attendanceTallyRepository
}

// NewRatingService constructs the service.
func NewRatingService(repo attendanceTallyRepository) *RatingService {
	return &RatingService{repo: repo}
}

// RatingResult carries the derived score and its inputs.
type RatingResult struct {
	EmployeeID string  `json:"employee_id"`
	Rating     float64 `json:"rating"`
	Present    int     `json:"present"`
	Total      int     `json:"total"`
}

// Rating computes 10 * present / total rounded to two decimals, and 0 when
// the employee has no attendance records at all.
func (s *RatingService) Rating(ctx context.Context, employeeID string) (*RatingResult, error) {
	tally, err := s.repo.Tally(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tally attendance")
	}
	result := &RatingResult{EmployeeID: employeeID, Present: tally.Present, Total: tally.Total}
	if tally.Total == 0 {
		return result, nil
	}
	raw := 10 * float64(tally.Present) / float64(tally.Total)
	result.Rating = math.Round(raw*100) / 100
	return result, nil
}
